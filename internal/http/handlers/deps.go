package handlers

import (
	"context"

	"github.com/jmoiron/sqlx"

	"velora/internal/backend"
	"velora/internal/bus"
	"velora/internal/config"
	"velora/internal/domain"
	"velora/internal/media"
	"velora/internal/services"
	"velora/internal/store"
	"velora/internal/ws"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
	AuthHandler     *AuthHandler
	ChatHandler     *ChatHandler
	AdminHandler    *AdminHandler

	Auth *services.AuthService
	Chat *services.ChatService
	Feed *ws.OrderFeed
}

func NewDeps(db *sqlx.DB, cfg config.Config, api *backend.Client, signals *bus.Bus) *Deps {
	cartRepo := store.NewCartRepo(db)
	sessionRepo := store.NewSessionRepo(db)
	vault := store.NewTokenVault(db, cfg.SessionSecret)

	authSvc := &services.AuthService{API: api, Sessions: sessionRepo, Vault: vault, Bus: signals}
	cartSvc := services.NewCartService(cartRepo, api)
	chatSvc := services.NewChatService(api, signals, cfg.ChatPollInterval, cfg.ChatIdleTimeout)
	orderSvc := services.NewOrderService(api)
	notifySvc := services.NewNotifyService(api)

	uploader := media.NewUploader(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket)

	feed := ws.NewOrderFeed(cfg.BackendWSURL, cfg.AdminFeedToken, cfg.OrderPollInterval, signals,
		func(ctx context.Context) ([]domain.Order, error) {
			return api.AdminOrders(ctx, cfg.AdminFeedToken)
		})

	return &Deps{
		CatalogHandler:  &CatalogHandler{API: api},
		CartHandler:     &CartHandler{Cart: cartSvc, Auth: authSvc},
		CheckoutHandler: &CheckoutHandler{Cart: cartSvc, Orders: orderSvc, Auth: authSvc, Bus: signals, Cfg: cfg},
		OrderHandler:    &OrderHandler{Orders: orderSvc, Auth: authSvc},
		AuthHandler:     &AuthHandler{Auth: authSvc},
		ChatHandler:     &ChatHandler{Chat: chatSvc, Auth: authSvc},
		AdminHandler: &AdminHandler{
			API: api, Orders: orderSvc, Notify: notifySvc,
			Auth: authSvc, Uploader: uploader, Feed: feed,
		},

		Auth: authSvc,
		Chat: chatSvc,
		Feed: feed,
	}
}
