package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/karkeeg/productforge/internal/config"
	"github.com/karkeeg/productforge/internal/db"
	"github.com/karkeeg/productforge/internal/server/middleware"
	"github.com/karkeeg/productforge/internal/server/ratelimit"
	"github.com/karkeeg/productforge/internal/stream"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	extractions map[uuid.UUID]*db.Extraction
	progress    map[uuid.UUID]*db.Progress
	templates   []db.Template
	touched     []int

	err error // returned by every method when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		extractions: make(map[uuid.UUID]*db.Extraction),
		progress:    make(map[uuid.UUID]*db.Progress),
	}
}

func (f *fakeStore) CreateExtraction(ctx context.Context, userID uuid.UUID, input db.CreateExtractionInput) (*db.Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	ext := &db.Extraction{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          input.Title,
		Niche:          input.Niche,
		TargetAudience: input.TargetAudience,
		Transformation: input.Transformation,
		CurrentStep:    1,
	}
	f.extractions[ext.ID] = ext
	return ext, nil
}

func (f *fakeStore) GetExtraction(ctx context.Context, id, userID uuid.UUID) (*db.Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	ext, ok := f.extractions[id]
	if !ok || ext.UserID != userID {
		return nil, nil
	}
	return ext, nil
}

func (f *fakeStore) ListExtractions(ctx context.Context, userID uuid.UUID, filters db.ExtractionFilters) ([]db.Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []db.Extraction
	for _, ext := range f.extractions {
		if ext.UserID == userID {
			out = append(out, *ext)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateStepPointer(ctx context.Context, id, userID uuid.UUID, step int, data json.RawMessage) (*db.ExtractionRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	ext, ok := f.extractions[id]
	if !ok || ext.UserID != userID {
		return nil, db.ErrNotFound
	}
	ext.CurrentStep = step
	ext.IsComplete = step == 8
	return &db.ExtractionRef{ID: ext.ID, CurrentStep: ext.CurrentStep, IsComplete: ext.IsComplete}, nil
}

func (f *fakeStore) GetProgress(ctx context.Context, userID uuid.UUID) (*db.Progress, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.progress[userID], nil
}

func (f *fakeStore) TouchProgress(ctx context.Context, userID uuid.UUID, targetStep int) error {
	if f.err != nil {
		return f.err
	}
	f.touched = append(f.touched, targetStep)
	return nil
}

func (f *fakeStore) CompleteOnboarding(ctx context.Context, userID uuid.UUID) error {
	return f.err
}

func (f *fakeStore) ListTemplates(ctx context.Context, filters db.TemplateFilters) ([]db.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	if filters.Category == "" {
		return f.templates, nil
	}
	var out []db.Template
	for _, t := range f.templates {
		if t.Category == filters.Category {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) IncrementTemplateUsage(ctx context.Context, id uuid.UUID) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	for i := range f.templates {
		if f.templates[i].ID == id {
			f.templates[i].UsageCount++
			return f.templates[i].UsageCount, nil
		}
	}
	return 0, db.ErrNotFound
}

// fakeRunner replays a scripted event sequence, or fails.
type fakeRunner struct {
	events []stream.Event
	err    error

	gotUser uuid.UUID
	gotExt  uuid.UUID
	gotStep int
}

func (f *fakeRunner) RunStep(ctx context.Context, userID, extractionID uuid.UUID, stepNumber int, sink stream.Sink) error {
	f.gotUser = userID
	f.gotExt = extractionID
	f.gotStep = stepNumber
	if f.err != nil {
		return f.err
	}
	for _, ev := range f.events {
		if err := sink.Send(ev); err != nil {
			return err
		}
	}
	return nil
}

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (f *fakeUserStore) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, name, email, businessType, experience string) (uuid.UUID, error) {
	u := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(email),
		BusinessType: businessType,
		Experience:   experience,
	}
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeUserStore) GetUser(ctx context.Context, id uuid.UUID) (*db.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return db.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func testPasswordConfig() *config.PasswordConfig {
	return &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret-0123456789abcdef", ExpirationHours: 1}
}

func newBurstOneLimiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
	})
}

// newTestServer wires a Server around in-memory fakes.
func newTestServer(store Store, runner StepRunner, users UserStore) *Server {
	s := &Server{
		store:       store,
		runner:      runner,
		rateLimiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
		jwtService:  NewJWTService(testJWTConfig()),
		validate:    validator.New(),
	}
	s.userService = NewUserService(users, testPasswordConfig())
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)
	return s
}

// authedRequest builds a request whose context already carries the user ID,
// as the auth middleware would.
func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey(), userID))
}
