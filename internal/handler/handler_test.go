package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saga-server/internal/auth"
	"saga-server/internal/catalog"
	"saga-server/internal/mocks"
	"saga-server/internal/models"
	"saga-server/internal/narrative"
	"saga-server/internal/scene"
	"saga-server/internal/service"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID uuid.UUID, premium bool) string {
	t.Helper()
	claims := auth.Claims{
		UserID:    userID.String(),
		Gender:    "female",
		IsPremium: premium,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type routerFixture struct {
	router *gin.Engine
	arcs   *mocks.MockArcRepository
	eps    *mocks.MockEpisodeRepository
	quota  *mocks.MockQuotaTracker
}

func newRouter(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.New()
	require.NoError(t, err)
	composer, err := scene.NewComposer(zap.NewNop())
	require.NoError(t, err)

	arcs := new(mocks.MockArcRepository)
	eps := new(mocks.MockEpisodeRepository)
	quotaTracker := new(mocks.MockQuotaTracker)

	episodeSvc := service.NewEpisodeService(service.Deps{
		Arcs:     arcs,
		Episodes: eps,
		Photos:   new(mocks.MockPhotoRepository),
		Catalog:  cat,
		Builder:  narrative.NewBuilder(),
		Composer: composer,
		Texts:    new(mocks.MockTextGenerator),
		Images:   new(mocks.MockImageGenerator),
		Fetcher:  new(mocks.MockPhotoFetcher),
		Quota:    quotaTracker,
		Logger:   zap.NewNop(),
	})
	templateSvc := service.NewTemplateService(cat, zap.NewNop())

	verifier, err := auth.NewJWTVerifier(testSecret, zap.NewNop())
	require.NoError(t, err)

	h := NewHandler(episodeSvc, templateSvc, verifier, zap.NewNop())
	router := gin.New()
	h.RegisterRoutes(router)
	return &routerFixture{router: router, arcs: arcs, eps: eps, quota: quotaTracker}
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	f := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpointIsPublic(t *testing.T) {
	f := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestListTemplates_FiltersByGenre(t *testing.T) {
	f := newRouter(t)
	token := signToken(t, uuid.New(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates?genre=romance", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sweet_revenge_shattered_vows")
	assert.NotContains(t, rec.Body.String(), "crown_of_ash")
}

func TestGetTemplate_UnknownIDReturns404(t *testing.T) {
	f := newRouter(t)
	token := signToken(t, uuid.New(), false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates/not_a_template", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartArc_ConflictWhenActiveArcExists(t *testing.T) {
	f := newRouter(t)
	userID := uuid.New()
	token := signToken(t, userID, false)

	existing := &models.StoryArc{
		ID:         uuid.New(),
		UserID:     userID,
		TemplateID: "sweet_revenge_shattered_vows",
		Status:     models.ArcStatusActive,
		TotalDays:  models.TemplateArcDays,
	}
	f.arcs.On("GetActiveByUser", mock.Anything, userID).Return(existing, nil)

	body := strings.NewReader(`{"templateId":"sweet_revenge_shattered_vows"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/arcs", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "active_arc_exists")
}

func TestGenerateEpisode_QuotaMapsTo429(t *testing.T) {
	f := newRouter(t)
	userID := uuid.New()
	token := signToken(t, userID, false)

	arc := &models.StoryArc{
		ID:         uuid.New(),
		UserID:     userID,
		TemplateID: "sweet_revenge_shattered_vows",
		Status:     models.ArcStatusActive,
		CurrentDay: 1,
		TotalDays:  models.TemplateArcDays,
	}
	f.arcs.On("GetByID", mock.Anything, arc.ID).Return(arc, nil)
	f.eps.On("GetByArcAndNumber", mock.Anything, arc.ID, 1).Return(nil, models.ErrEpisodeNotFound)
	f.quota.On("HasGeneratedToday", mock.Anything, userID).Return(true, nil)

	body := strings.NewReader(`{"dayNumber":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/arcs/"+arc.ID.String()+"/episodes", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "daily_quota_exceeded")
}

func TestGetArc_OtherUsersArcHidden(t *testing.T) {
	f := newRouter(t)
	token := signToken(t, uuid.New(), false)

	arc := &models.StoryArc{
		ID:     uuid.New(),
		UserID: uuid.New(), // different owner
		Status: models.ArcStatusActive,
	}
	f.arcs.On("GetByID", mock.Anything, arc.ID).Return(arc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arcs/"+arc.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordFeedback_InvalidValueRejected(t *testing.T) {
	f := newRouter(t)
	token := signToken(t, uuid.New(), false)

	body := strings.NewReader(`{"feedback":"amazing"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/episodes/"+uuid.NewString()+"/feedback", body)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
