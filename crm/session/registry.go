// Package session keeps per-user conversational state for the multi-step
// flows the bot runs: password reset and first-run setup, user registration,
// phone change and password change.
//
// State lives in process memory only. A restart drops every active flow,
// which is acceptable: the user simply starts the flow again.
package session

import "sync"

// Category identifies an independent flow family. A user may hold at most
// one session per category; sessions in different categories do not
// interfere with each other.
type Category string

const (
	// Reset covers both password reset and first-run setup.
	Reset          Category = "reset"
	Registration   Category = "registration"
	PhoneChange    Category = "phone_change"
	PasswordChange Category = "password_change"
)

// Step names the position inside a flow.
type Step string

const (
	// Reset / setup steps.
	StepSetupPhone    Step = "setup_phone"
	StepSetupPassword Step = "setup_password"
	StepWaitingPhone  Step = "waiting_phone"
	StepWaitingCode   Step = "waiting_code"
	StepWaitingNewPwd Step = "waiting_new_password"

	// Registration steps.
	StepWaitingName Step = "waiting_name"

	// Phone change.
	StepWaitingNewPhone Step = "waiting_new_phone"

	// Password change.
	StepWaitingOldPwd Step = "waiting_old_password"
)

// steps lists the valid steps per category. A stored session whose step is
// not in its category's set is treated as corrupt and discarded on read.
var steps = map[Category]map[Step]bool{
	Reset: {
		StepSetupPhone:    true,
		StepSetupPassword: true,
		StepWaitingPhone:  true,
		StepWaitingCode:   true,
		StepWaitingNewPwd: true,
	},
	Registration: {
		StepWaitingPhone: true,
		StepWaitingName:  true,
	},
	PhoneChange: {
		StepWaitingNewPhone: true,
		StepWaitingCode:     true,
	},
	PasswordChange: {
		StepWaitingOldPwd: true,
		StepWaitingNewPwd: true,
	},
}

// Fields carries the data a flow accumulates across steps.
type Fields struct {
	Phone    string
	Code     string
	NewPhone string
}

// Session is a snapshot of one user's position in one flow.
type Session struct {
	Category Category
	Step     Step
	Fields   Fields
}

type key struct {
	cat    Category
	userID int64
}

// Registry holds active sessions keyed by (category, user).
type Registry struct {
	mu       sync.Mutex
	sessions map[key]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[key]Session)}
}

// Start begins a flow at the given step, silently replacing any session the
// user already had in that category.
func (r *Registry) Start(cat Category, userID int64, step Step, fields Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[key{cat, userID}] = Session{Category: cat, Step: step, Fields: fields}
}

// Get returns a copy of the user's session in the category, if any. A session
// holding a step that does not belong to the category is dropped and reported
// as absent.
func (r *Registry) Get(cat Category, userID int64) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key{cat, userID}]
	if !ok {
		return Session{}, false
	}
	if !steps[cat][s.Step] {
		delete(r.sessions, key{cat, userID})
		return Session{}, false
	}
	return s, true
}

// Advance moves the session to the next step, optionally mutating its fields.
// It is a no-op when the user has no session in the category.
func (r *Registry) Advance(cat Category, userID int64, next Step, update func(*Fields)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{cat, userID}
	s, ok := r.sessions[k]
	if !ok {
		return
	}
	s.Step = next
	if update != nil {
		update(&s.Fields)
	}
	r.sessions[k] = s
}

// End removes the user's session in the category. Ending an absent session
// is a no-op.
func (r *Registry) End(cat Category, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key{cat, userID})
}
