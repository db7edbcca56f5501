package site_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"go-attend/internal/site"
	siteerrors "go-attend/internal/site/errors"
	siteMock "go-attend/internal/site/mock"
)

func setupSiteRouter(handler *site.Handler, programID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("program_id", programID)
		c.Next()
	})
	r.POST("/sites", handler.Create)
	r.GET("/sites", handler.List)
	r.GET("/sites/:id", handler.GetByID)
	r.PATCH("/sites/:id", handler.Update)
	return r
}

func TestSiteHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := siteMock.NewMockService(ctrl)
	handler := site.NewHandler(mockService)
	programID := "11111111-1111-1111-1111-111111111111"
	r := setupSiteRouter(handler, programID)

	t.Run("Success", func(t *testing.T) {
		reqBody := site.CreateSiteRequest{
			Name:      "Harbor Campus",
			CenterLat: -6.2,
			CenterLng: 106.8,
		}
		mockService.EXPECT().
			Create(gomock.Any(), programID, gomock.Any()).
			Return(site.SiteResponse{ID: "site-1", Name: "Harbor Campus", RadiusMeters: 150, IsActive: true}, nil)

		body, _ := json.Marshal(reqBody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/sites", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var res map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &res)
		assert.NoError(t, err)
		assert.Equal(t, true, res["ok"])
	})

	t.Run("MissingName", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/sites", bytes.NewReader([]byte(`{"center_lat":-6.2,"center_lng":106.8}`)))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSiteHandler_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := siteMock.NewMockService(ctrl)
	handler := site.NewHandler(mockService)
	programID := "11111111-1111-1111-1111-111111111111"
	r := setupSiteRouter(handler, programID)

	t.Run("NotFound", func(t *testing.T) {
		mockService.EXPECT().
			GetByID(gomock.Any(), programID, "missing-site").
			Return(site.SiteResponse{}, siteerrors.ErrSiteNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/sites/missing-site", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var res map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &res)
		assert.NoError(t, err)
		assert.Equal(t, false, res["ok"])
	})
}

func TestSiteHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := siteMock.NewMockService(ctrl)
	handler := site.NewHandler(mockService)
	programID := "11111111-1111-1111-1111-111111111111"
	r := setupSiteRouter(handler, programID)

	mockService.EXPECT().
		ListByProgram(gomock.Any(), programID).
		Return([]site.SiteResponse{
			{ID: "site-1", Name: "Harbor Campus"},
			{ID: "site-2", Name: "Annex Lab"},
		}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/sites", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Ok   bool                `json:"ok"`
		Data []site.SiteResponse `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &res)
	assert.NoError(t, err)
	assert.True(t, res.Ok)
	assert.Len(t, res.Data, 2)
}

func TestSiteHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockService := siteMock.NewMockService(ctrl)
	handler := site.NewHandler(mockService)
	programID := "11111111-1111-1111-1111-111111111111"
	r := setupSiteRouter(handler, programID)

	inactive := false
	reqBody := site.UpdateSiteRequest{IsActive: &inactive}
	mockService.EXPECT().
		Update(gomock.Any(), programID, "site-1", gomock.Any()).
		Return(site.SiteResponse{ID: "site-1", Name: "Harbor Campus", IsActive: false}, nil)

	body, _ := json.Marshal(reqBody)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/sites/site-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
