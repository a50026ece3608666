// Package flows implements the conversational state machine: setup, login,
// registration, password reset, phone change and password change.
//
// Each inbound text message executes at most one transition. Dispatch walks
// the flow categories in a fixed precedence order, so a user sitting in two
// flows at once is always owned by the higher-priority one.
package flows

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/logger"
	"crmbot/core/telegram/keyboard"
	"crmbot/crm/authz"
	"crmbot/crm/crmerr"
	"crmbot/crm/models"
	"crmbot/crm/password"
	"crmbot/crm/session"
	"crmbot/crm/sms"
	"crmbot/crm/validate"
)

// Callback payloads owned by the flow layer.
const (
	CbLogin          = "login"
	CbForgotPassword = "forgot_password"
	CbContinueReset  = "continue_reset"
	CbCancelReset    = "cancel_reset"
)

// Store is the persistence slice the machine needs.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpsertUser(ctx context.Context, u models.User) error
	UpdateUserProfile(ctx context.Context, userID int64, phone, fullName string) error
}

// Event is one inbound text message with the sender's identity.
type Event struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Text      string
}

// Reply is one outbound message.
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Machine drives all conversational flows.
type Machine struct {
	store    Store
	sessions *session.Registry
	gate     *authz.Gate
	sms      sms.Sender
	menu     func() *tele.ReplyMarkup

	// codeFn generates a verification code; replaced in tests.
	codeFn func() string
}

func NewMachine(store Store, sessions *session.Registry, gate *authz.Gate, sender sms.Sender, menu func() *tele.ReplyMarkup) *Machine {
	return &Machine{
		store:    store,
		sessions: sessions,
		gate:     gate,
		sms:      sender,
		menu:     menu,
		codeFn:   randomCode,
	}
}

// randomCode draws a uniform 6-digit code.
func randomCode() string {
	return strconv.Itoa(rand.Intn(900000) + 100000)
}

func text(s string) []Reply                        { return []Reply{{Text: s}} }
func markup(s string, m *tele.ReplyMarkup) []Reply { return []Reply{{Text: s, Markup: m}} }

// HandleStart is the bootstrap decision behind the start command.
func (m *Machine) HandleStart(ctx context.Context, ev Event) ([]Reply, error) {
	hash, err := m.store.GetSetting(ctx, models.SettingPasswordHash)
	if err != nil {
		return nil, err
	}
	adminPhone, err := m.store.GetSetting(ctx, models.SettingAdminPhone)
	if err != nil {
		return nil, err
	}

	if hash == "" || adminPhone == "" {
		m.sessions.Start(session.Reset, ev.UserID, session.StepSetupPhone, session.Fields{})
		logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.setup_started",
			slog.Int64("user_id", ev.UserID))
		return text("Welcome! This looks like a first run.\nSend the admin phone number in international format, for example +998901234567."), nil
	}

	if _, active := m.sessions.Get(session.Reset, ev.UserID); active {
		return markup("You have an unfinished password reset.",
			keyboard.InlineButtonsRows(
				[]keyboard.InlineBtn{{Text: "Continue", Data: CbContinueReset}},
				[]keyboard.InlineBtn{{Text: "Cancel", Data: CbCancelReset}},
			)), nil
	}

	if m.gate.IsAuthenticated(ev.UserID) {
		return markup("Main menu.", m.menu()), nil
	}

	return markup("Please log in to continue.", m.loginButtons()), nil
}

func (m *Machine) loginButtons() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "Log in", Data: CbLogin}},
		[]keyboard.InlineBtn{{Text: "Forgot password", Data: CbForgotPassword}},
	)
}

// HandleText routes one text message through the flow precedence order.
// The boolean reports whether a flow consumed the message; false hands it to
// the authenticated menu layer.
func (m *Machine) HandleText(ctx context.Context, ev Event) ([]Reply, bool, error) {
	if s, ok := m.sessions.Get(session.Registration, ev.UserID); ok {
		replies, err := m.handleRegistration(ctx, ev, s)
		return replies, true, err
	}
	if s, ok := m.sessions.Get(session.Reset, ev.UserID); ok {
		replies, err := m.handleReset(ctx, ev, s)
		return replies, true, err
	}
	if s, ok := m.sessions.Get(session.PhoneChange, ev.UserID); ok {
		replies, err := m.handlePhoneChange(ctx, ev, s)
		return replies, true, err
	}
	if s, ok := m.sessions.Get(session.PasswordChange, ev.UserID); ok {
		replies, err := m.handlePasswordChange(ctx, ev, s)
		return replies, true, err
	}
	if !m.gate.IsAuthenticated(ev.UserID) {
		replies, err := m.handleLogin(ctx, ev)
		return replies, true, err
	}
	return nil, false, nil
}

// handleLogin treats the message body as a password attempt.
func (m *Machine) handleLogin(ctx context.Context, ev Event) ([]Reply, error) {
	hash, err := m.store.GetSetting(ctx, models.SettingPasswordHash)
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return text("The bot is not set up yet. Send /start to begin."), nil
	}
	if !password.Verify(ev.Text, hash) {
		logger.LogEvent(ctx, logger.BOT, slog.LevelWarn, "flow.login_failed",
			slog.Int64("user_id", ev.UserID))
		return text("Wrong password. Try again."), nil
	}

	u, err := m.store.GetUser(ctx, ev.UserID)
	if err != nil {
		return nil, err
	}
	if u != nil && u.IsBanned {
		return text("You are banned."), nil
	}
	if u == nil {
		if err := m.store.UpsertUser(ctx, m.identity(ev)); err != nil {
			return nil, err
		}
	}

	if u == nil || !u.Registered() {
		m.sessions.Start(session.Registration, ev.UserID, session.StepWaitingPhone, session.Fields{})
		return text("Password accepted. Let's finish your profile.\nSend your phone number."), nil
	}

	m.gate.Authenticate(ev.UserID)
	logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.login_ok",
		slog.Int64("user_id", ev.UserID))
	return markup("Welcome back!", m.menu()), nil
}

func (m *Machine) handleRegistration(ctx context.Context, ev Event, s session.Session) ([]Reply, error) {
	switch s.Step {
	case session.StepWaitingPhone:
		phone, ok := validate.NormalizePhone(ev.Text)
		if !ok {
			return text("That does not look like a phone number. Send digits, optionally prefixed with +."), nil
		}
		m.sessions.Advance(session.Registration, ev.UserID, session.StepWaitingName, func(f *session.Fields) {
			f.Phone = phone
		})
		return text("Now send your full name."), nil

	case session.StepWaitingName:
		if !validate.ValidName(ev.Text) {
			return text("The name is too short. Send at least 2 characters."), nil
		}
		if err := m.store.UpdateUserProfile(ctx, ev.UserID, s.Fields.Phone, ev.Text); err != nil {
			return nil, err
		}
		m.sessions.End(session.Registration, ev.UserID)
		m.gate.Authenticate(ev.UserID)
		logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.registration_done",
			slog.Int64("user_id", ev.UserID))
		return markup("Registration complete. Welcome!", m.menu()), nil
	}
	return nil, nil
}

// handleReset owns both the first-run setup steps and the forgot-password steps.
func (m *Machine) handleReset(ctx context.Context, ev Event, s session.Session) ([]Reply, error) {
	switch s.Step {
	case session.StepSetupPhone:
		// Setup requires the strict form; no auto-prefixing here.
		if !validate.ValidPhone(ev.Text) {
			return text("The phone must start with + followed by digits, for example +998901234567."), nil
		}
		m.sessions.Advance(session.Reset, ev.UserID, session.StepSetupPassword, func(f *session.Fields) {
			f.Phone = ev.Text
		})
		return text("Now choose a password (at least 4 characters)."), nil

	case session.StepSetupPassword:
		if !validate.ValidPassword(ev.Text) {
			return text("The password is too short. Send at least 4 characters."), nil
		}
		if err := m.store.SetSetting(ctx, models.SettingPasswordHash, password.Hash(ev.Text)); err != nil {
			return nil, err
		}
		if err := m.store.SetSetting(ctx, models.SettingAdminPhone, s.Fields.Phone); err != nil {
			return nil, err
		}
		if err := m.store.UpsertUser(ctx, m.identity(ev)); err != nil {
			return nil, err
		}
		m.sessions.End(session.Reset, ev.UserID)
		m.gate.Authenticate(ev.UserID)
		logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.setup_done",
			slog.Int64("user_id", ev.UserID))
		return markup("Setup complete. You are logged in.", m.menu()), nil

	case session.StepWaitingPhone:
		adminPhone, err := m.store.GetSetting(ctx, models.SettingAdminPhone)
		if err != nil {
			return nil, err
		}
		// Exact string equality, no normalization.
		if ev.Text != adminPhone {
			return text("The phone does not match. Try again."), nil
		}
		code := m.codeFn()
		if err := m.sms.SendCode(ctx, adminPhone, code); err != nil {
			return nil, err
		}
		m.sessions.Advance(session.Reset, ev.UserID, session.StepWaitingCode, func(f *session.Fields) {
			f.Phone = adminPhone
			f.Code = code
		})
		return text("A 6-digit code was sent to your phone. Send it here."), nil

	case session.StepWaitingCode:
		if ev.Text != s.Fields.Code {
			return text("Wrong code. Try again."), nil
		}
		m.sessions.Advance(session.Reset, ev.UserID, session.StepWaitingNewPwd, nil)
		return text("Code accepted. Send a new password (at least 4 characters)."), nil

	case session.StepWaitingNewPwd:
		if !validate.ValidPassword(ev.Text) {
			return text("The password is too short. Send at least 4 characters."), nil
		}
		if err := m.store.SetSetting(ctx, models.SettingPasswordHash, password.Hash(ev.Text)); err != nil {
			return nil, err
		}
		if err := m.store.UpsertUser(ctx, m.identity(ev)); err != nil {
			return nil, err
		}
		m.sessions.End(session.Reset, ev.UserID)
		m.gate.Authenticate(ev.UserID)
		logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.reset_done",
			slog.Int64("user_id", ev.UserID))
		return markup("Password changed. You are logged in.", m.menu()), nil
	}
	return nil, nil
}

func (m *Machine) handlePhoneChange(ctx context.Context, ev Event, s session.Session) ([]Reply, error) {
	if replies, err := m.requireGate(ctx, ev.UserID, session.PhoneChange); replies != nil || err != nil {
		return replies, err
	}
	switch s.Step {
	case session.StepWaitingNewPhone:
		phone, ok := validate.NormalizePhone(ev.Text)
		if !ok {
			return text("That does not look like a phone number. Send digits, optionally prefixed with +."), nil
		}
		code := m.codeFn()
		if err := m.sms.SendCode(ctx, phone, code); err != nil {
			return nil, err
		}
		m.sessions.Advance(session.PhoneChange, ev.UserID, session.StepWaitingCode, func(f *session.Fields) {
			f.NewPhone = phone
			f.Code = code
		})
		return text("A 6-digit code was sent to the new phone. Send it here."), nil

	case session.StepWaitingCode:
		if ev.Text != s.Fields.Code {
			return text("Wrong code. Try again."), nil
		}
		u, err := m.store.GetUser(ctx, ev.UserID)
		if err != nil {
			return nil, err
		}
		fullName := ""
		if u != nil {
			fullName = u.FullName
		}
		if err := m.store.UpdateUserProfile(ctx, ev.UserID, s.Fields.NewPhone, fullName); err != nil {
			return nil, err
		}
		m.sessions.End(session.PhoneChange, ev.UserID)
		logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.phone_changed",
			slog.Int64("user_id", ev.UserID))
		return markup("Phone number updated.", m.menu()), nil
	}
	return nil, nil
}

func (m *Machine) handlePasswordChange(ctx context.Context, ev Event, s session.Session) ([]Reply, error) {
	if replies, err := m.requireGate(ctx, ev.UserID, session.PasswordChange); replies != nil || err != nil {
		return replies, err
	}
	switch s.Step {
	case session.StepWaitingOldPwd:
		hash, err := m.store.GetSetting(ctx, models.SettingPasswordHash)
		if err != nil {
			return nil, err
		}
		if !password.Verify(ev.Text, hash) {
			return text("Wrong current password. Try again."), nil
		}
		m.sessions.Advance(session.PasswordChange, ev.UserID, session.StepWaitingNewPwd, nil)
		return text("Send a new password (at least 4 characters)."), nil

	case session.StepWaitingNewPwd:
		if !validate.ValidPassword(ev.Text) {
			return text("The password is too short. Send at least 4 characters."), nil
		}
		if err := m.store.SetSetting(ctx, models.SettingPasswordHash, password.Hash(ev.Text)); err != nil {
			return nil, err
		}
		m.sessions.End(session.PasswordChange, ev.UserID)
		logger.LogEvent(ctx, logger.BOT, slog.LevelInfo, "flow.password_changed",
			slog.Int64("user_id", ev.UserID))
		return markup("Password updated.", m.menu()), nil
	}
	return nil, nil
}

// requireGate enforces authentication for the secondary flows. A failed gate
// ends the session so a stale flow cannot linger for a logged-out user.
func (m *Machine) requireGate(ctx context.Context, userID int64, cat session.Category) ([]Reply, error) {
	err := m.gate.Check(ctx, userID)
	if err == nil {
		return nil, nil
	}
	var authErr *crmerr.AuthorizationError
	if errors.As(err, &authErr) {
		m.sessions.End(cat, userID)
		if authErr.Banned {
			return text("You are banned."), nil
		}
		return markup("Please log in first.", m.loginButtons()), nil
	}
	return nil, err
}

// StartReset begins the forgot-password flow with a masked phone hint.
func (m *Machine) StartReset(ctx context.Context, userID int64) ([]Reply, error) {
	adminPhone, err := m.store.GetSetting(ctx, models.SettingAdminPhone)
	if err != nil {
		return nil, err
	}
	if adminPhone == "" {
		return text("No admin phone is configured. Send /start to set up the bot."), nil
	}
	m.sessions.Start(session.Reset, userID, session.StepWaitingPhone, session.Fields{})
	return text("Send the registered admin phone number (" + validate.MaskPhone(adminPhone) + ") to confirm."), nil
}

// ResumeReset re-prompts for whatever step the active reset session is on.
func (m *Machine) ResumeReset(ctx context.Context, userID int64) ([]Reply, error) {
	s, ok := m.sessions.Get(session.Reset, userID)
	if !ok {
		return m.StartReset(ctx, userID)
	}
	switch s.Step {
	case session.StepSetupPhone:
		return text("Send the admin phone number in international format."), nil
	case session.StepSetupPassword:
		return text("Choose a password (at least 4 characters)."), nil
	case session.StepWaitingPhone:
		return text("Send the registered admin phone number to confirm."), nil
	case session.StepWaitingCode:
		return text("Send the 6-digit code from the SMS."), nil
	case session.StepWaitingNewPwd:
		return text("Send a new password (at least 4 characters)."), nil
	}
	return nil, nil
}

// CancelReset drops the active reset session.
func (m *Machine) CancelReset(userID int64) []Reply {
	m.sessions.End(session.Reset, userID)
	return markup("Reset cancelled.", m.loginButtons())
}

// StartPhoneChange begins the phone-change flow for a logged-in user.
func (m *Machine) StartPhoneChange(ctx context.Context, userID int64) ([]Reply, error) {
	if replies, err := m.requireGate(ctx, userID, session.PhoneChange); replies != nil || err != nil {
		return replies, err
	}
	m.sessions.Start(session.PhoneChange, userID, session.StepWaitingNewPhone, session.Fields{})
	return text("Send the new phone number."), nil
}

// StartPasswordChange begins the password-change flow for a logged-in user.
func (m *Machine) StartPasswordChange(ctx context.Context, userID int64) ([]Reply, error) {
	if replies, err := m.requireGate(ctx, userID, session.PasswordChange); replies != nil || err != nil {
		return replies, err
	}
	m.sessions.Start(session.PasswordChange, userID, session.StepWaitingOldPwd, session.Fields{})
	return text("Send your current password."), nil
}

// PromptLogin answers the login button.
func (m *Machine) PromptLogin() []Reply {
	return text("Send the password.")
}

func (m *Machine) identity(ev Event) models.User {
	return models.User{
		ID:        ev.UserID,
		Username:  ev.Username,
		FirstName: ev.FirstName,
		LastName:  ev.LastName,
	}
}
