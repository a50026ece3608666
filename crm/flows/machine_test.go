package flows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"crmbot/crm/authz"
	"crmbot/crm/models"
	"crmbot/crm/password"
	"crmbot/crm/session"
)

type fakeStore struct {
	settings map[string]string
	users    map[int64]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings: make(map[string]string),
		users:    make(map[int64]*models.User),
	}
}

func (f *fakeStore) GetSetting(_ context.Context, key string) (string, error) {
	return f.settings[key], nil
}

func (f *fakeStore) SetSetting(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) UpsertUser(_ context.Context, u models.User) error {
	if existing, ok := f.users[u.ID]; ok {
		existing.Username = u.Username
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		return nil
	}
	copied := u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) UpdateUserProfile(_ context.Context, id int64, phone, fullName string) error {
	u, ok := f.users[id]
	if !ok {
		return nil
	}
	u.Phone = phone
	u.FullName = fullName
	return nil
}

type smsRecorder struct {
	phones []string
	codes  []string
}

func (r *smsRecorder) SendCode(_ context.Context, phone, code string) error {
	r.phones = append(r.phones, phone)
	r.codes = append(r.codes, code)
	return nil
}

func emptyMenu() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{}
}

type fixture struct {
	store    *fakeStore
	sessions *session.Registry
	gate     *authz.Gate
	sms      *smsRecorder
	machine  *Machine
}

func newFixture() *fixture {
	store := newFakeStore()
	sessions := session.NewRegistry()
	gate := authz.NewGate(store)
	recorder := &smsRecorder{}
	m := NewMachine(store, sessions, gate, recorder, emptyMenu)
	return &fixture{store: store, sessions: sessions, gate: gate, sms: recorder, machine: m}
}

func (f *fixture) configure(pwd, phone string) {
	f.store.settings[models.SettingPasswordHash] = password.Hash(pwd)
	f.store.settings[models.SettingAdminPhone] = phone
}

func (f *fixture) send(userID int64, text string) []Reply {
	replies, handled, err := f.machine.HandleText(context.Background(), Event{UserID: userID, Text: text})
	if err != nil {
		panic(err)
	}
	_ = handled
	return replies
}

func TestStartEntersSetupWhenUnconfigured(t *testing.T) {
	f := newFixture()
	replies, err := f.machine.HandleStart(context.Background(), Event{UserID: 1})
	require.NoError(t, err)
	require.Len(t, replies, 1)

	s, ok := f.sessions.Get(session.Reset, 1)
	require.True(t, ok)
	assert.Equal(t, session.StepSetupPhone, s.Step)
}

func TestSetupFlowEndToEnd(t *testing.T) {
	f := newFixture()
	_, err := f.machine.HandleStart(context.Background(), Event{UserID: 1})
	require.NoError(t, err)

	// Bare digits are rejected at setup; the step does not move.
	f.send(1, "998901234567")
	s, _ := f.sessions.Get(session.Reset, 1)
	assert.Equal(t, session.StepSetupPhone, s.Step)

	f.send(1, "+998901234567")
	f.send(1, "abc") // too short
	replies := f.send(1, "secret")
	require.Len(t, replies, 1)

	assert.Equal(t, password.Hash("secret"), f.store.settings[models.SettingPasswordHash])
	assert.Equal(t, "+998901234567", f.store.settings[models.SettingAdminPhone])
	assert.True(t, f.gate.IsAuthenticated(1))
	_, ok := f.sessions.Get(session.Reset, 1)
	assert.False(t, ok)
}

func TestLoginWrongThenRight(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")
	f.store.users[1] = &models.User{ID: 1, Phone: "+998900000000", FullName: "Ali Valiev"}

	f.send(1, "nope")
	assert.False(t, f.gate.IsAuthenticated(1))

	f.send(1, "secret")
	assert.True(t, f.gate.IsAuthenticated(1))
}

func TestLoginFirstTimeEntersRegistration(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")

	f.send(5, "secret")
	assert.False(t, f.gate.IsAuthenticated(5), "registration gate comes before authentication")
	s, ok := f.sessions.Get(session.Registration, 5)
	require.True(t, ok)
	assert.Equal(t, session.StepWaitingPhone, s.Step)

	// Registration phone is auto-prefixed.
	f.send(5, "998905554433")
	f.send(5, "X") // name too short
	f.send(5, "Olim Karimov")

	assert.True(t, f.gate.IsAuthenticated(5))
	u, _ := f.store.GetUser(context.Background(), 5)
	require.NotNil(t, u)
	assert.Equal(t, "+998905554433", u.Phone)
	assert.Equal(t, "Olim Karimov", u.FullName)
}

func TestLoginRefusedForBannedUser(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")
	f.store.users[2] = &models.User{ID: 2, IsBanned: true, Phone: "+1", FullName: "Someone"}

	f.send(2, "secret")
	assert.False(t, f.gate.IsAuthenticated(2))
}

func TestResetFlowRoundTrip(t *testing.T) {
	f := newFixture()
	f.configure("oldpwd", "+998901234567")
	f.machine.codeFn = func() string { return "424242" }

	replies, err := f.machine.StartReset(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "*********4567")

	// A near-miss phone is rejected; still waiting for the phone.
	f.send(1, "998901234567")
	s, _ := f.sessions.Get(session.Reset, 1)
	assert.Equal(t, session.StepWaitingPhone, s.Step)

	// Exact match dispatches the code over SMS.
	f.send(1, "+998901234567")
	require.Equal(t, []string{"424242"}, f.sms.codes)
	require.Equal(t, []string{"+998901234567"}, f.sms.phones)

	// A wrong code leaves the step unchanged.
	f.send(1, "111111")
	s, _ = f.sessions.Get(session.Reset, 1)
	assert.Equal(t, session.StepWaitingCode, s.Step)

	f.send(1, "424242")
	s, _ = f.sessions.Get(session.Reset, 1)
	assert.Equal(t, session.StepWaitingNewPwd, s.Step)

	f.send(1, "newpwd")
	assert.Equal(t, password.Hash("newpwd"), f.store.settings[models.SettingPasswordHash])
	assert.True(t, f.gate.IsAuthenticated(1))
	_, ok := f.sessions.Get(session.Reset, 1)
	assert.False(t, ok)
}

func TestStartOffersResumeDuringReset(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")
	_, err := f.machine.StartReset(context.Background(), 1)
	require.NoError(t, err)

	replies, err := f.machine.HandleStart(context.Background(), Event{UserID: 1})
	require.NoError(t, err)
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Markup)
	kb := replies[0].Markup.InlineKeyboard
	require.Len(t, kb, 2)
	assert.Equal(t, CbContinueReset, kb[0][0].Data)
	assert.Equal(t, CbCancelReset, kb[1][0].Data)

	// Cancel drops the session; the next start shows the login prompt.
	f.machine.CancelReset(1)
	replies, err = f.machine.HandleStart(context.Background(), Event{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, replies[0].Markup)
	assert.Equal(t, CbLogin, replies[0].Markup.InlineKeyboard[0][0].Data)
}

func TestDispatchPrefersRegistrationOverReset(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")
	f.sessions.Start(session.Reset, 1, session.StepWaitingPhone, session.Fields{})
	f.sessions.Start(session.Registration, 1, session.StepWaitingPhone, session.Fields{})

	f.send(1, "998901112233")

	// Registration consumed the message.
	reg, ok := f.sessions.Get(session.Registration, 1)
	require.True(t, ok)
	assert.Equal(t, session.StepWaitingName, reg.Step)
	reset, ok := f.sessions.Get(session.Reset, 1)
	require.True(t, ok)
	assert.Equal(t, session.StepWaitingPhone, reset.Step)
}

func TestPhoneChangeFlow(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")
	f.store.users[1] = &models.User{ID: 1, Phone: "+998900000000", FullName: "Ali Valiev"}
	f.gate.Authenticate(1)
	f.machine.codeFn = func() string { return "313131" }

	_, err := f.machine.StartPhoneChange(context.Background(), 1)
	require.NoError(t, err)

	f.send(1, "998907776655")
	require.Equal(t, []string{"+998907776655"}, f.sms.phones)

	f.send(1, "313131")
	u, _ := f.store.GetUser(context.Background(), 1)
	assert.Equal(t, "+998907776655", u.Phone)
	assert.Equal(t, "Ali Valiev", u.FullName)
	_, ok := f.sessions.Get(session.PhoneChange, 1)
	assert.False(t, ok)
}

func TestPhoneChangeRequiresLogin(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")

	replies, err := f.machine.StartPhoneChange(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	_, ok := f.sessions.Get(session.PhoneChange, 9)
	assert.False(t, ok)
}

func TestPasswordChangeFlow(t *testing.T) {
	f := newFixture()
	f.configure("oldpwd", "+998901234567")
	f.store.users[1] = &models.User{ID: 1, Phone: "+1", FullName: "Ali"}
	f.gate.Authenticate(1)

	_, err := f.machine.StartPasswordChange(context.Background(), 1)
	require.NoError(t, err)

	// Wrong current password keeps the step.
	f.send(1, "wrong")
	s, _ := f.sessions.Get(session.PasswordChange, 1)
	assert.Equal(t, session.StepWaitingOldPwd, s.Step)

	f.send(1, "oldpwd")
	f.send(1, "brandnew")
	assert.Equal(t, password.Hash("brandnew"), f.store.settings[models.SettingPasswordHash])
	_, ok := f.sessions.Get(session.PasswordChange, 1)
	assert.False(t, ok)
}

func TestUnhandledTextFallsThroughWhenAuthenticated(t *testing.T) {
	f := newFixture()
	f.configure("secret", "+998901234567")
	f.store.users[1] = &models.User{ID: 1, Phone: "+1", FullName: "Ali"}
	f.gate.Authenticate(1)

	replies, handled, err := f.machine.HandleText(context.Background(), Event{UserID: 1, Text: "Ali, 998901234567"})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Nil(t, replies)
}
