package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"velora/internal/backend"
	"velora/internal/bus"
	"velora/internal/config"
	"velora/internal/http/handlers"
	applog "velora/internal/log"
	"velora/internal/observability"
	"velora/internal/store"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	applog.Setup(cfg.LogLevel, os.Getenv("LOG_PRETTY") == "1")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	api := backend.New(backend.Settings{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.RequestTimeout,
		RPS:     cfg.OutboundRPS,
		Burst:   cfg.OutboundBurst,
	})
	signals := bus.New()
	deps := handlers.NewDeps(db, cfg, api, signals)
	authSvc := deps.Auth

	// Background workers: chat session janitor, admin order board.
	go deps.Chat.Run(ctx)
	if cfg.AdminFeedToken != "" {
		go deps.Feed.Run(ctx)
	}

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(os.Getenv("TEMPLATE_RELOAD") == "1")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Global body size guard; image uploads need headroom.
	app.Server().MaxRequestBodySize = 10 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
		},
	}))
	app.Use(handlers.CSRF())
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := cfg.MediaDir
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	app.Static("/static", "./web/static")
	// Guarded media to avoid traversal
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Storefront ----------
	app.Get("/", deps.CatalogHandler.Home)
	app.Get("/category/:slug", deps.CatalogHandler.Category)
	app.Get("/product/:id", deps.CatalogHandler.Detail)

	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart", deps.CartHandler.Add)
	app.Post("/cart/qty", deps.CartHandler.SetQty)
	app.Post("/cart/remove", deps.CartHandler.Remove)

	app.Get("/checkout", deps.CheckoutHandler.Checkout)
	app.Post("/orders", deps.CheckoutHandler.Place)
	app.Get("/orders", handlers.RequireUser(authSvc), deps.OrderHandler.History)
	app.Post("/orders/:id/cancel", handlers.RequireUser(authSvc), deps.OrderHandler.Cancel)

	// Auth routes (login throttled)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)
	app.Get("/signup", deps.AuthHandler.SignupForm)
	app.Post("/signup", deps.AuthHandler.Signup)
	app.Get("/forgot-password", deps.AuthHandler.ForgotForm)
	app.Post("/forgot-password", deps.AuthHandler.Forgot)
	app.Get("/reset-password/:token", deps.AuthHandler.ResetForm)
	app.Post("/reset-password/:token", deps.AuthHandler.Reset)
	app.Get("/profile", deps.AuthHandler.Profile)
	app.Post("/profile", deps.AuthHandler.ProfileUpdate)

	// Support widget JSON surface
	chat := app.Group("/api/chat")
	chat.Get("/messages", deps.ChatHandler.Messages)
	chat.Post("/send", deps.ChatHandler.Send)
	chat.Post("/draft", deps.ChatHandler.Draft)
	chat.Post("/close", deps.ChatHandler.CloseWidget)

	// ---------- Back office ----------
	admin := app.Group("/admin", handlers.RequireAdmin(authSvc), func(c *fiber.Ctx) error {
		c.Locals("BadgePollMS", cfg.NotifyPollInterval.Milliseconds())
		return c.Next()
	})
	admin.Get("/", deps.AdminHandler.Dashboard)
	admin.Get("/orders", deps.AdminHandler.OrdersPage)
	admin.Post("/orders/:id/status", deps.AdminHandler.UpdateOrderStatus)
	admin.Get("/products", deps.AdminHandler.ProductsPage)
	admin.Get("/products/new", deps.AdminHandler.ProductForm)
	admin.Post("/products", deps.AdminHandler.SaveProduct)
	admin.Post("/products/:id/delete", deps.AdminHandler.DeleteProduct)
	admin.Get("/products/export", deps.AdminHandler.ExportProducts)
	admin.Get("/categories", deps.AdminHandler.CategoriesPage)
	admin.Post("/categories", deps.AdminHandler.SaveCategory)
	admin.Post("/categories/:id/delete", deps.AdminHandler.DeleteCategory)
	admin.Get("/ads", deps.AdminHandler.AdsPage)
	admin.Post("/ads", deps.AdminHandler.SaveAd)
	admin.Post("/ads/:id/delete", deps.AdminHandler.DeleteAd)
	admin.Get("/notifications", deps.AdminHandler.Notifications)
	admin.Get("/notifications/unread", deps.AdminHandler.UnreadBadge)
	admin.Post("/notifications/read", deps.AdminHandler.MarkRead)
	admin.Post("/notifications/read-all", deps.AdminHandler.MarkAllRead)
	admin.Get("/chat/:userID", deps.AdminHandler.Thread)
	admin.Post("/chat/:userID/reply", deps.AdminHandler.Reply)

	// Health & metrics & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("error", fiber.Map{"Message": "Page not found"})
	})

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.ShutdownWithContext(shutCtx)
		_ = shutdownOTel(shutCtx)
		_ = db.Close()
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
