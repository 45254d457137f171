package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/session"
)

// Handler exposes the ledger operations over HTTP. It owns the translation
// between domain errors and status codes, and the session lifecycle around
// login, logout and account deletion.
type Handler struct {
	service  *Service
	sessions *session.Manager
}

// NewHandler builds the wallet HTTP handler.
func NewHandler(service *Service, sessions *session.Manager) *Handler {
	return &Handler{service: service, sessions: sessions}
}

type registerRequest struct {
	Username   string `json:"username"`
	Phone      string `json:"phone"`
	PIN        string `json:"pin"`
	Email      string `json:"email"`
	NationalID string `json:"national_id"`
}

// Register creates an account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.Register(RegisterInput{
		Username:   req.Username,
		Phone:      req.Phone,
		PIN:        req.PIN,
		Email:      req.Email,
		NationalID: req.NationalID,
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusCreated, err, fiber.Map{
		"username": a.Username,
		"phone":    a.PhoneNumber,
		"balance":  a.Balance,
	})
}

type loginRequest struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// Login authenticates and starts the session, replacing any previous one.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.Authenticate(req.Phone, req.PIN)
	if err != nil {
		return mapError(err)
	}
	token := h.sessions.Begin(a.PhoneNumber)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token":    token,
		"username": a.Username,
		"phone":    a.PhoneNumber,
		"balance":  a.Balance,
	})
}

// Logout ends the current session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.sessions.End(sessionToken(c))
	return c.SendStatus(http.StatusNoContent)
}

// Balance reports the session account's balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	a, err := h.service.Details(sessionPhone(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"phone":   a.PhoneNumber,
		"balance": a.Balance,
	})
}

// Details returns the full account record, PIN excluded.
func (h *Handler) Details(c *fiber.Ctx) error {
	a, err := h.service.Details(sessionPhone(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(detailsResponse(a))
}

// History lists the account's transactions in append order.
func (h *Handler) History(c *fiber.Ctx) error {
	txs, err := h.service.History(sessionPhone(c))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": txs})
}

type depositRequest struct {
	Amount float64 `json:"amount"`
}

// Deposit credits the session account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.Deposit(sessionPhone(c), req.Amount)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusOK, err, fiber.Map{"balance": a.Balance})
}

type withdrawRequest struct {
	PIN    string  `json:"pin"`
	Amount float64 `json:"amount"`
}

// Withdraw debits the session account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.Withdraw(sessionPhone(c), req.PIN, req.Amount)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusOK, err, fiber.Map{"balance": a.Balance})
}

type transferRequest struct {
	PIN            string  `json:"pin"`
	RecipientPhone string  `json:"recipient_phone"`
	Amount         float64 `json:"amount"`
}

// Transfer moves funds to another account.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	res, err := h.service.Transfer(sessionPhone(c), req.PIN, req.RecipientPhone, req.Amount)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusCreated, err, fiber.Map{
		"balance":      res.SenderBalance,
		"completed_at": res.CompletedAt,
	})
}

type payFeeRequest struct {
	PIN    string  `json:"pin"`
	Amount float64 `json:"amount"`
}

// PayConvocation debits the convocation fee.
func (h *Handler) PayConvocation(c *fiber.Ctx) error {
	var req payFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.PayConvocation(sessionPhone(c), req.PIN, req.Amount)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusOK, err, fiber.Map{"balance": a.Balance})
}

type payBillRequest struct {
	PIN    string  `json:"pin"`
	Biller string  `json:"biller"`
	Amount float64 `json:"amount"`
}

// PayBill debits a bill payment.
func (h *Handler) PayBill(c *fiber.Ctx) error {
	var req payBillRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.PayBill(sessionPhone(c), req.PIN, req.Biller, req.Amount)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusOK, err, fiber.Map{"balance": a.Balance})
}

type profileRequest struct {
	PIN              string `json:"pin"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	DOB              string `json:"dob"`
	Gender           string `json:"gender"`
	MotherName       string `json:"mother_name"`
	FatherName       string `json:"father_name"`
	NationalID       string `json:"national_id"`
	BirthCertificate string `json:"birth_certificate"`
	PermanentAddress string `json:"permanent_address"`
	PresentAddress   string `json:"present_address"`
}

// UpdateProfile overwrites the profile attributes.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	a, err := h.service.UpdateProfile(sessionPhone(c), req.PIN, ProfileInput{
		FullName:         req.FullName,
		Email:            req.Email,
		DOB:              req.DOB,
		Gender:           req.Gender,
		MotherName:       req.MotherName,
		FatherName:       req.FatherName,
		NationalID:       req.NationalID,
		BirthCertificate: req.BirthCertificate,
		PermanentAddress: req.PermanentAddress,
		PresentAddress:   req.PresentAddress,
	})
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusOK, err, detailsResponse(*a))
}

type changePINRequest struct {
	OldPIN     string `json:"old_pin"`
	NewPIN     string `json:"new_pin"`
	ConfirmPIN string `json:"confirm_pin"`
}

// ChangePIN replaces the account PIN.
func (h *Handler) ChangePIN(c *fiber.Ctx) error {
	var req changePINRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	err := h.service.ChangePIN(sessionPhone(c), req.OldPIN, req.NewPIN, req.ConfirmPIN)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	return respond(c, http.StatusOK, err, fiber.Map{"changed": true})
}

type deleteRequest struct {
	PIN string `json:"pin"`
}

// Delete removes the account permanently and revokes the session.
func (h *Handler) Delete(c *fiber.Ctx) error {
	var req deleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	err := h.service.DeleteAccount(sessionPhone(c), req.PIN)
	if err != nil && !errors.Is(err, ErrPersistence) {
		return mapError(err)
	}
	h.sessions.Revoke()
	return respond(c, http.StatusOK, err, fiber.Map{"deleted": true})
}

// sessionPhone reads the phone number placed in locals by the session
// middleware.
func sessionPhone(c *fiber.Ctx) string {
	phone, _ := c.Locals("session_phone").(string)
	return phone
}

func sessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals("session_token").(string)
	return token
}

func detailsResponse(a account.Account) fiber.Map {
	return fiber.Map{
		"username":          a.Username,
		"phone":             a.PhoneNumber,
		"full_name":         a.FullName,
		"email":             a.Email,
		"dob":               a.DOB,
		"gender":            a.Gender,
		"mother_name":       a.MotherName,
		"father_name":       a.FatherName,
		"national_id":       a.NationalID,
		"birth_certificate": a.BirthCertificate,
		"permanent_address": a.PermanentAddress,
		"present_address":   a.PresentAddress,
		"balance":           a.Balance,
	}
}

// respond emits the success payload. When the snapshot flush failed the
// operation still committed in memory, so the payload carries a durability
// warning instead of becoming an error response.
func respond(c *fiber.Ctx, status int, err error, payload fiber.Map) error {
	if errors.Is(err, ErrPersistence) {
		payload["warning"] = "state not persisted; latest change may be lost on restart"
	}
	return c.Status(status).JSON(payload)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrDuplicatePhone):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrRecipientNotFound), errors.Is(err, account.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSelfTransfer):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
