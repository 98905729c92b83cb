package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/avidev9/school-portal-api/internal/middleware"
	"github.com/avidev9/school-portal-api/internal/models"
	"github.com/avidev9/school-portal-api/internal/service"
)

type fakeHomeworkCounter struct{ active int }

func (f *fakeHomeworkCounter) CountActive(ctx context.Context, teacherID string) (int, error) {
	return f.active, nil
}

type fakeExamLister struct{}

func (f *fakeExamLister) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	return nil, nil
}

type fakeNoticeLister struct{ total int }

func (f *fakeNoticeLister) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	return nil, f.total, nil
}

type fakeActivityLister struct{}

func (f *fakeActivityLister) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEntry, int, error) {
	return nil, 0, nil
}

type fakeTimetableLister struct{}

func (f *fakeTimetableLister) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error) {
	return nil, nil
}

func overviewTestHandler() *OverviewHandler {
	svc := service.NewOverviewService(&fakeHomeworkCounter{active: 3}, &fakeExamLister{}, &fakeNoticeLister{total: 2}, &fakeActivityLister{}, &fakeTimetableLister{}, nil, time.Minute, nil)
	return NewOverviewHandler(svc)
}

func TestOverviewHandlerTeacherSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := overviewTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teacher/overview", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})

	handler.Teacher(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data map[string]interface{} `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(3), envelope.Data["active_homework"])
	assert.Equal(t, float64(2), envelope.Data["published_notices"])
}

func TestOverviewHandlerTeacherMissingClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := overviewTestHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teacher/overview", nil)

	handler.Teacher(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
