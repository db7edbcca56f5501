package session_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"go-attend/internal/billing"
	"go-attend/internal/session"
	sessionerrors "go-attend/internal/session/errors"
)

type fakeService struct {
	clockInFn    func(ctx context.Context, participantID string, req session.ClockInRequest) (session.SessionResponse, error)
	heartbeatFn  func(ctx context.Context, participantID, sessionID string, req session.HeartbeatRequest) (session.SessionResponse, error)
	startLunchFn func(ctx context.Context, participantID, sessionID string, req session.LunchRequest) (session.SessionResponse, error)
	endLunchFn   func(ctx context.Context, participantID, sessionID string, req session.LunchRequest) (session.SessionResponse, error)
	clockOutFn   func(ctx context.Context, participantID, sessionID string, req session.ClockOutRequest) (session.SessionResponse, error)
	getAllFn     func(ctx context.Context, participantID string) ([]session.SessionResponse, error)
	getByIDFn    func(ctx context.Context, participantID, sessionID string) (session.SessionDetailResponse, error)
}

func (f *fakeService) ClockIn(ctx context.Context, participantID string, req session.ClockInRequest) (session.SessionResponse, error) {
	return f.clockInFn(ctx, participantID, req)
}
func (f *fakeService) Heartbeat(ctx context.Context, participantID, sessionID string, req session.HeartbeatRequest) (session.SessionResponse, error) {
	return f.heartbeatFn(ctx, participantID, sessionID, req)
}
func (f *fakeService) StartLunch(ctx context.Context, participantID, sessionID string, req session.LunchRequest) (session.SessionResponse, error) {
	return f.startLunchFn(ctx, participantID, sessionID, req)
}
func (f *fakeService) EndLunch(ctx context.Context, participantID, sessionID string, req session.LunchRequest) (session.SessionResponse, error) {
	return f.endLunchFn(ctx, participantID, sessionID, req)
}
func (f *fakeService) ClockOut(ctx context.Context, participantID, sessionID string, req session.ClockOutRequest) (session.SessionResponse, error) {
	return f.clockOutFn(ctx, participantID, sessionID, req)
}
func (f *fakeService) GetAll(ctx context.Context, participantID string) ([]session.SessionResponse, error) {
	return f.getAllFn(ctx, participantID)
}
func (f *fakeService) GetByID(ctx context.Context, participantID, sessionID string) (session.SessionDetailResponse, error) {
	return f.getByIDFn(ctx, participantID, sessionID)
}
func (f *fakeService) Sweep(ctx context.Context) error { return nil }

func positionJSON() string {
	return fmt.Sprintf(
		`{"latitude":-6.2,"longitude":106.8,"accuracy_meters":12,"observed_at":%q}`,
		time.Now().UTC().Format(time.RFC3339),
	)
}

func TestHandler_ClockIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	participantID := uuid.New().String()
	siteID := uuid.New().String()

	svc := &fakeService{
		clockInFn: func(ctx context.Context, pid string, req session.ClockInRequest) (session.SessionResponse, error) {
			assert.Equal(t, participantID, pid)
			assert.Equal(t, siteID, req.SiteID)
			return session.SessionResponse{ID: uuid.New().String(), State: session.StateClockedIn}, nil
		},
	}
	h := session.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", participantID)
	body := fmt.Sprintf(`{"site_id":%q,"position":%s}`, siteID, positionJSON())
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/clock-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ClockIn(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_ClockIn_ZeroCoordinatesAreValid(t *testing.T) {
	gin.SetMode(gin.TestMode)
	participantID := uuid.New().String()

	svc := &fakeService{
		clockInFn: func(ctx context.Context, pid string, req session.ClockInRequest) (session.SessionResponse, error) {
			assert.Zero(t, req.Position.Latitude)
			assert.Zero(t, req.Position.Longitude)
			return session.SessionResponse{ID: uuid.New().String(), State: session.StateClockedIn}, nil
		},
	}
	h := session.NewHandler(svc)

	// A site on the equator at the prime meridian; 0 must bind.
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", participantID)
	body := fmt.Sprintf(
		`{"site_id":%q,"position":{"latitude":0,"longitude":0,"accuracy_meters":12,"observed_at":%q}}`,
		uuid.New().String(), time.Now().UTC().Format(time.RFC3339),
	)
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/clock-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ClockIn(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_ClockIn_MissingPositionRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := session.NewHandler(&fakeService{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", uuid.New().String())
	body := fmt.Sprintf(`{"site_id":%q}`, uuid.New().String())
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/clock-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ClockIn(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ClockIn_GateDeniedIs402WithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ref := "inv-2026-001"

	svc := &fakeService{
		clockInFn: func(ctx context.Context, pid string, req session.ClockInRequest) (session.SessionResponse, error) {
			return session.SessionResponse{}, &session.GateDeniedError{Decision: billing.Decision{
				Allowed:          false,
				Reason:           "payment past due",
				AmountDueCents:   4500,
				PaymentReference: &ref,
			}}
		},
	}
	h := session.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", uuid.New().String())
	body := fmt.Sprintf(`{"site_id":%q,"position":%s}`, uuid.New().String(), positionJSON())
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/clock-in", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.ClockIn(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var envelope struct {
		Ok    bool `json:"ok"`
		Error struct {
			Code    string `json:"code"`
			Details struct {
				AmountDueCents   int64  `json:"amount_due_cents"`
				PaymentReference string `json:"payment_reference"`
			} `json:"details"`
		} `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Ok)
	assert.Equal(t, "GATE_DENIED", envelope.Error.Code)
	assert.Equal(t, int64(4500), envelope.Error.Details.AmountDueCents)
	assert.Equal(t, ref, envelope.Error.Details.PaymentReference)
}

func TestHandler_Heartbeat_StaleIs409(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		heartbeatFn: func(ctx context.Context, pid, sid string, req session.HeartbeatRequest) (session.SessionResponse, error) {
			return session.SessionResponse{}, sessionerrors.ErrStaleHeartbeat
		},
	}
	h := session.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	body := fmt.Sprintf(`{"position":%s}`, positionJSON())
	c.Request = httptest.NewRequest(http.MethodPost, "/sessions/x/heartbeat", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Heartbeat(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_GetAll_Paginates(t *testing.T) {
	gin.SetMode(gin.TestMode)

	all := make([]session.SessionResponse, 25)
	for i := range all {
		all[i] = session.SessionResponse{ID: uuid.New().String()}
	}
	svc := &fakeService{
		getAllFn: func(ctx context.Context, pid string) ([]session.SessionResponse, error) {
			return all, nil
		},
	}
	h := session.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", uuid.New().String())
	c.Request = httptest.NewRequest(http.MethodGet, "/sessions?page=2&page_size=10", nil)

	h.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []session.SessionResponse `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
			Page       int   `json:"page"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 10)
	assert.Equal(t, int64(25), envelope.Meta.Total)
	assert.Equal(t, 3, envelope.Meta.TotalPages)
	assert.Equal(t, 2, envelope.Meta.Page)
}

func TestHandler_GetByID_NotOwnerIs403(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &fakeService{
		getByIDFn: func(ctx context.Context, pid, sid string) (session.SessionDetailResponse, error) {
			return session.SessionDetailResponse{}, sessionerrors.ErrNotSessionOwner
		},
	}
	h := session.NewHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("participant_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
	c.Request = httptest.NewRequest(http.MethodGet, "/sessions/x", nil)

	h.GetByID(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
