package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"velora/internal/backend"
	applog "velora/internal/log"
	"velora/internal/services"
	"velora/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return render(c, "login", fiber.Map{"Err": "Please enter a valid email address"})
	}
	password := c.FormValue("password")
	if password == "" {
		return render(c, "login", fiber.Map{"Err": "Please enter your password"})
	}

	user, err := h.Auth.Login(c.Context(), sid, email, password)
	if err != nil {
		applog.Security(c, "login.fail", map[string]any{"email": email})
		return render(c, "login", fiber.Map{"Err": backend.UserMessage(err)})
	}
	applog.Audit(c, "login.ok", map[string]any{"user_id": user.MongoID})
	if user.IsAdmin() {
		return c.Redirect("/admin")
	}
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		applog.Error(c, "logout", err, nil)
	}
	return c.Redirect("/")
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return render(c, "signup", fiber.Map{"Err": "Please enter a valid email address"})
	}
	first, ok := validate.Name(c.FormValue("firstName"))
	if !ok {
		return render(c, "signup", fiber.Map{"Err": "Please enter your first name"})
	}
	last, _ := validate.Name(c.FormValue("lastName"))
	password := c.FormValue("password")
	if !validate.Password(password) {
		return render(c, "signup", fiber.Map{"Err": "Password must be 8+ characters with upper, lower and digit"})
	}
	phone, _ := validate.Phone(c.FormValue("phone"))

	err := h.Auth.Signup(c.Context(), backend.SignupRequest{
		Email: email, FirstName: first, LastName: last, Password: password, Phone: phone,
	})
	if err != nil {
		applog.Error(c, "signup.fail", err, map[string]any{"email": email})
		return render(c, "signup", fiber.Map{"Err": backend.UserMessage(err)})
	}
	applog.Audit(c, "signup.ok", map[string]any{"email": email})
	return c.Redirect("/login")
}

func (h *AuthHandler) ForgotForm(c *fiber.Ctx) error {
	return render(c, "forgot_password", fiber.Map{})
}

func (h *AuthHandler) Forgot(c *fiber.Ctx) error {
	email, ok := validate.Email(c.FormValue("email"))
	if !ok {
		return render(c, "forgot_password", fiber.Map{"Err": "Please enter a valid email address"})
	}
	if err := h.Auth.ForgotPassword(c.Context(), email); err != nil {
		applog.Error(c, "forgot.fail", err, nil)
		return render(c, "forgot_password", fiber.Map{"Err": backend.UserMessage(err)})
	}
	return render(c, "forgot_password", fiber.Map{"Sent": true})
}

func (h *AuthHandler) ResetForm(c *fiber.Ctx) error {
	return render(c, "reset_password", fiber.Map{"Token": c.Params("token")})
}

func (h *AuthHandler) Reset(c *fiber.Ctx) error {
	resetToken := c.Params("token")
	password := c.FormValue("password")
	if !validate.Password(password) {
		return render(c, "reset_password", fiber.Map{"Token": resetToken, "Err": "Password must be 8+ characters with upper, lower and digit"})
	}
	if err := h.Auth.ResetPassword(c.Context(), resetToken, password); err != nil {
		applog.Error(c, "reset.fail", err, nil)
		return render(c, "reset_password", fiber.Map{"Token": resetToken, "Err": backend.UserMessage(err)})
	}
	applog.Audit(c, "reset.ok", nil)
	return c.Redirect("/login")
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	sid := ensureSID(c)
	user, err := h.Auth.Profile(c.Context(), sid)
	if err != nil {
		if errors.Is(err, services.ErrNotLoggedIn) || backend.IsAuth(err) {
			return c.Redirect("/login")
		}
		applog.Error(c, "profile.load", err, nil)
		return fail(c, fiber.StatusBadGateway, backend.UserMessage(err))
	}
	return render(c, "profile", fiber.Map{"Profile": user})
}

func (h *AuthHandler) ProfileUpdate(c *fiber.Ctx) error {
	sid := ensureSID(c)
	first, ok := validate.Name(c.FormValue("firstName"))
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Please enter your first name")
	}
	last, _ := validate.Name(c.FormValue("lastName"))
	phone, _ := validate.Phone(c.FormValue("phone"))

	err := h.Auth.UpdateProfile(c.Context(), sid, backend.ProfileUpdate{
		FirstName: first, LastName: last, Phone: phone, Image: c.FormValue("image"),
	})
	if err != nil {
		applog.Error(c, "profile.update", err, nil)
		return fail(c, fiber.StatusBadRequest, backend.UserMessage(err))
	}
	applog.Audit(c, "profile.update", nil)
	return c.Redirect("/profile")
}
