package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

type memHoursRepo struct {
	mu         sync.Mutex
	weekly     []models.WeeklyScheduleEntry
	exceptions map[string]models.ScheduleException
	nextID     int
}

func newMemHoursRepo() *memHoursRepo {
	return &memHoursRepo{exceptions: map[string]models.ScheduleException{}}
}

func (r *memHoursRepo) ListWeeklyHours(context.Context) ([]models.WeeklyScheduleEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WeeklyScheduleEntry(nil), r.weekly...), nil
}

func (r *memHoursRepo) UpsertWeeklyHours(_ context.Context, entries []models.WeeklyScheduleEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weekly = append([]models.WeeklyScheduleEntry(nil), entries...)
	return nil
}

func (r *memHoursRepo) ListExceptions(_ context.Context, from, to models.Date) ([]models.ScheduleException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ScheduleException{}
	for _, e := range r.exceptions {
		if !e.Date.Before(from) && !to.Before(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memHoursRepo) CreateException(_ context.Context, e models.ScheduleException) (models.ScheduleException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.exceptions {
		if existing.Date.Equal(e.Date) {
			return models.ScheduleException{}, apperrors.ErrConflict
		}
	}
	r.nextID++
	e.ID = fmt.Sprintf("exc-%d", r.nextID)
	r.exceptions[e.ID] = e
	return e, nil
}

func (r *memHoursRepo) UpdateException(_ context.Context, e models.ScheduleException) (models.ScheduleException, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exceptions[e.ID]; !ok {
		return models.ScheduleException{}, apperrors.ErrNotFound
	}
	r.exceptions[e.ID] = e
	return e, nil
}

func (r *memHoursRepo) DeleteException(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exceptions[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.exceptions, id)
	return nil
}

type memCatalogRepo struct {
	services []models.Service
}

func (r *memCatalogRepo) ListServices(_ context.Context, activeOnly bool) ([]models.Service, error) {
	out := []models.Service{}
	for _, s := range r.services {
		if s.IsActive || !activeOnly {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memCatalogRepo) UpdateService(_ context.Context, svc models.Service) (models.Service, error) {
	for i, s := range r.services {
		if s.ID == svc.ID {
			r.services[i] = svc
			return svc, nil
		}
	}
	return models.Service{}, apperrors.ErrNotFound
}

type fakePayments struct {
	payments  []models.Payment
	customers map[string]models.Customer
	err       error
}

func (f *fakePayments) ListPayments(_ context.Context, begin, end time.Time) ([]models.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Payment
	for _, p := range f.payments {
		if !p.CreatedAt.Before(begin) && !p.CreatedAt.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) GetCustomer(_ context.Context, id string) (models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return models.Customer{}, errors.New("customer not found")
	}
	return c, nil
}

func perform(t *testing.T, r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
