package client

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

const testBase = "http://api.test"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	c := New(testBase)
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func successBody(data interface{}) map[string]interface{} {
	return map[string]interface{}{"success": true, "data": data}
}

func errorBody(code, message string) map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	}
}

func registerLogin(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/auth/login",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, successBody(dto.AuthResponse{
				AccessToken: "jwt-token",
				TokenType:   "Bearer",
				User:        dto.UserResponse{ID: 1, Email: "awa@example.com", Role: "organizer"},
			}))
		})
}

func TestClient_SessionLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("login populates the session", func(t *testing.T) {
		c := newMockedClient(t)
		registerLogin(t)

		session, err := c.Login(ctx, "awa@example.com", "motdepasse")
		assert.NoError(t, err)
		assert.Equal(t, "jwt-token", session.Token)
		assert.Equal(t, "organizer", session.User.Role)
		assert.NotNil(t, c.Session())
	})

	t.Run("failed login leaves no session", func(t *testing.T) {
		c := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/auth/login",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusUnauthorized,
					errorBody("INCORRECT_CREDENTIALS", "Email ou mot de passe incorrect"))
			})

		_, err := c.Login(ctx, "awa@example.com", "mauvais")
		assert.Error(t, err)
		apiErr, ok := err.(*APIError)
		assert.True(t, ok)
		assert.Equal(t, "INCORRECT_CREDENTIALS", apiErr.Code)
		assert.Nil(t, c.Session())
	})

	t.Run("logout clears the session", func(t *testing.T) {
		c := newMockedClient(t)
		registerLogin(t)
		_, err := c.Login(ctx, "awa@example.com", "motdepasse")
		assert.NoError(t, err)

		c.Logout()
		assert.Nil(t, c.Session())
	})

	t.Run("a 401 clears the session", func(t *testing.T) {
		c := newMockedClient(t)
		registerLogin(t)
		_, err := c.Login(ctx, "awa@example.com", "motdepasse")
		assert.NoError(t, err)

		httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/auth/me",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusUnauthorized,
					errorBody("UNAUTHORIZED", "Token expiré"))
			})

		_, err = c.Me(ctx)
		assert.Error(t, err)
		assert.Nil(t, c.Session(), "an expired token must clear the local session")
	})

	t.Run("token is sent as a bearer header", func(t *testing.T) {
		c := newMockedClient(t)
		registerLogin(t)
		_, err := c.Login(ctx, "awa@example.com", "motdepasse")
		assert.NoError(t, err)

		var gotAuth string
		httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/auth/me",
			func(req *http.Request) (*http.Response, error) {
				gotAuth = req.Header.Get("Authorization")
				return httpmock.NewJsonResponse(http.StatusOK, successBody(dto.UserResponse{ID: 1}))
			})

		_, err = c.Me(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "Bearer jwt-token", gotAuth)
	})
}

func TestClient_ListEvents(t *testing.T) {
	ctx := context.Background()
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/events",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Dakar", req.URL.Query().Get("city"))
			assert.Equal(t, "2", req.URL.Query().Get("page"))
			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    []domain.Event{{ID: 5, Title: "Forum Tech Dakar"}},
				"meta":    Meta{Page: 2, PerPage: 20, Total: 21, TotalPages: 2},
			})
		})

	events, meta, err := c.ListEvents(ctx, &dto.ListEventsQuery{Page: 2, City: "Dakar"})
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "Forum Tech Dakar", events[0].Title)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, int64(21), meta.Total)
}

func TestClient_FetchTaxonomy(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates both lists", func(t *testing.T) {
		c := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/categories",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusOK, successBody([]domain.Category{{ID: 1, Name: "Conférences"}}))
			})
		httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/tags",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusOK, successBody([]domain.Tag{{ID: 1, Name: "tech"}, {ID: 2, Name: "gratuit"}}))
			})

		taxonomy, err := c.FetchTaxonomy(ctx)
		assert.NoError(t, err)
		assert.Len(t, taxonomy.Categories, 1)
		assert.Len(t, taxonomy.Tags, 2)
	})

	t.Run("either failure fails the call", func(t *testing.T) {
		c := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/categories",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusOK, successBody([]domain.Category{}))
			})
		httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/tags",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusInternalServerError,
					errorBody("INTERNAL_ERROR", "boom"))
			})

		_, err := c.FetchTaxonomy(ctx)
		assert.Error(t, err)
	})
}

func TestClient_VerifyQR(t *testing.T) {
	ctx := context.Background()
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/registrations/verify-qr",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, successBody(dto.VerifyQRResponse{
				Valid:      true,
				ScanStatus: dto.ScanStatusFirstScan,
				Message:    "✅ QR code valide ! Accès autorisé. PREMIER SCAN.",
			}))
		})

	result, err := c.Scan(ctx, "payload-abc")
	assert.NoError(t, err)
	assert.Equal(t, VerdictGreen, result.Verdict)
	assert.True(t, result.Response.Valid)

	t.Run("logged in scanner uses the organizer route", func(t *testing.T) {
		registerLogin(t)
		httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/registrations/organizer/verify-qr",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusOK, successBody(dto.VerifyQRResponse{
					Valid:      false,
					ScanStatus: dto.ScanStatusAlreadyScanned,
					Message:    "⚠️ ALERTE ! Ce QR code a déjà été scanné il y a 4 minutes. Possibilité de fraude !",
				}))
			})

		_, err := c.Login(ctx, "gate@example.com", "secret-pass")
		assert.NoError(t, err)

		result, err := c.Scan(ctx, "payload-abc")
		assert.NoError(t, err)
		assert.Equal(t, VerdictYellow, result.Verdict)
	})
}

func TestClient_ConfirmPayment(t *testing.T) {
	ctx := context.Background()
	c := newMockedClient(t)

	httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/registrations/confirm-payment",
		func(*http.Request) (*http.Response, error) {
			return httpmock.NewJsonResponse(http.StatusOK, successBody(domain.Registration{
				ID:     3,
				Status: domain.RegistrationStatusConfirmed,
			}))
		})

	reg, err := c.ConfirmPayment(ctx, "cs_test_001")
	assert.NoError(t, err)
	assert.Equal(t, domain.RegistrationStatusConfirmed, reg.Status)
}

func TestClient_GuestFormBlocksBeforeSending(t *testing.T) {
	ctx := context.Background()

	t.Run("incomplete form never leaves the client", func(t *testing.T) {
		c := newMockedClient(t)
		req := &dto.GuestRegistrationRequest{FirstName: "Awa"}

		_, err := c.RegisterGuest(ctx, 7, req)
		var formErr *GuestFormError
		assert.ErrorAs(t, err, &formErr)
		assert.Equal(t, "Last name is required", formErr.Message)
		assert.Equal(t, 0, httpmock.GetTotalCallCount())

		_, err = c.GuestCheckout(ctx, 7, req)
		assert.ErrorAs(t, err, &formErr)
		assert.Equal(t, 0, httpmock.GetTotalCallCount())
	})

	t.Run("phone without a country code is rejected", func(t *testing.T) {
		c := newMockedClient(t)
		_, err := c.RegisterGuest(ctx, 7, &dto.GuestRegistrationRequest{
			FirstName: "Awa",
			LastName:  "Diop",
			Email:     "awa@example.com",
			Phone:     "771234567",
		})
		var formErr *GuestFormError
		assert.ErrorAs(t, err, &formErr)
		assert.Equal(t, 0, httpmock.GetTotalCallCount())
	})

	t.Run("complete form goes through", func(t *testing.T) {
		c := newMockedClient(t)
		httpmock.RegisterResponder(http.MethodPost, testBase+"/api/v1/registrations/events/7/register/guest",
			func(*http.Request) (*http.Response, error) {
				return httpmock.NewJsonResponse(http.StatusCreated, successBody(domain.Registration{
					ID:     11,
					Status: domain.RegistrationStatusConfirmed,
				}))
			})

		reg, err := c.RegisterGuest(ctx, 7, &dto.GuestRegistrationRequest{
			FirstName: "Awa",
			LastName:  "Diop",
			Email:     "  Awa@Example.com ",
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(11), reg.ID)
		assert.Equal(t, 1, httpmock.GetTotalCallCount())
	})
}

func TestClient_Timeout(t *testing.T) {
	c := newMockedClient(t)
	httpmock.RegisterResponder(http.MethodGet, testBase+"/api/v1/marketplace/events",
		func(*http.Request) (*http.Response, error) {
			time.Sleep(50 * time.Millisecond)
			return httpmock.NewJsonResponse(http.StatusOK, successBody([]domain.Event{}))
		})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, _, err := c.ListEvents(ctx, &dto.ListEventsQuery{})
	assert.Error(t, err)
}
