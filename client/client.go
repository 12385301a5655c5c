// Package client is a typed Go client for the evMonde API. It owns the
// session lifecycle: the token and user are set once at login and cleared
// on logout or on any 401 from the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// Session holds the authenticated identity for the lifetime of a login
type Session struct {
	Token string
	User  dto.UserResponse
}

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client talks to the evMonde API
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.RWMutex
	session *Session
}

// New creates a new Client for the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Session returns a copy of the current session, or nil when logged out
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Logout clears the session
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// envelope mirrors the server's response structure
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *Meta `json:"meta"`
}

// Meta carries pagination info for list calls
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// do performs a request and decodes the envelope into out. A 401 clears
// the session before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (*Meta, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.Logout()
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return env.Meta, nil
}

// --- Auth ---

// Login authenticates and populates the session
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var auth dto.AuthResponse
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", &dto.LoginRequest{
		Email:    email,
		Password: password,
	}, &auth)
	if err != nil {
		return nil, err
	}

	session := &Session{Token: auth.AccessToken, User: auth.User}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	s := *session
	return &s, nil
}

// RegisterAccount creates an account and populates the session
func (c *Client) RegisterAccount(ctx context.Context, req *dto.RegisterRequest) (*Session, error) {
	var auth dto.AuthResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", req, &auth); err != nil {
		return nil, err
	}

	session := &Session{Token: auth.AccessToken, User: auth.User}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	s := *session
	return &s, nil
}

// Me fetches the current profile
func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates profile fields
func (c *Client) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if _, err := c.do(ctx, http.MethodPut, "/api/v1/auth/profile", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword rotates the password
func (c *Client) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/change-password", req, nil)
	return err
}

// --- Public catalogue ---

// ListEvents fetches a page of published events
func (c *Client) ListEvents(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, *Meta, error) {
	var events []domain.Event
	meta, err := c.do(ctx, http.MethodGet, "/api/v1/marketplace/events"+listQuery(q), nil, &events)
	if err != nil {
		return nil, nil, err
	}
	return events, meta, nil
}

// GetEvent fetches one published event
func (c *Client) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	var event domain.Event
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/marketplace/events/"+formatID(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Taxonomy bundles the catalogue filter sources
type Taxonomy struct {
	Categories []domain.Category
	Tags       []domain.Tag
}

// FetchTaxonomy loads categories and tags concurrently. Either failure
// fails the call; there is no partial result.
func (c *Client) FetchTaxonomy(ctx context.Context) (*Taxonomy, error) {
	var out Taxonomy
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.do(gctx, http.MethodGet, "/api/v1/marketplace/categories", nil, &out.Categories)
		return err
	})
	g.Go(func() error {
		_, err := c.do(gctx, http.MethodGet, "/api/v1/marketplace/tags", nil, &out.Tags)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Organizer console ---

// CreateEvent submits a draft event
func (c *Client) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	var event domain.Event
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/events", req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// MyEvents fetches the caller's events
func (c *Client) MyEvents(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, *Meta, error) {
	var events []domain.Event
	meta, err := c.do(ctx, http.MethodGet, "/api/v1/events/my/events"+listQuery(q), nil, &events)
	if err != nil {
		return nil, nil, err
	}
	return events, meta, nil
}

// MyEvent fetches one owned event with tickets and reminders
func (c *Client) MyEvent(ctx context.Context, id int64) (*domain.Event, error) {
	var event domain.Event
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/events/my/events/"+formatID(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent submits changed event fields and tickets
func (c *Client) UpdateEvent(ctx context.Context, id int64, req *dto.UpdateEventRequest) (*domain.Event, error) {
	var event domain.Event
	if _, err := c.do(ctx, http.MethodPut, "/api/v1/events/"+formatID(id), req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an owned event
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/events/"+formatID(id), nil, nil)
	return err
}

// PublishEvent moves a draft to published
func (c *Client) PublishEvent(ctx context.Context, id int64) (*domain.Event, error) {
	var event domain.Event
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/events/"+formatID(id)+"/publish", nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CancelEvent moves a published event to cancelled
func (c *Client) CancelEvent(ctx context.Context, id int64) (*domain.Event, error) {
	var event domain.Event
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/events/"+formatID(id)+"/cancel", nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ListReminders fetches an event's reminder rows
func (c *Client) ListReminders(ctx context.Context, eventID int64) ([]domain.EventReminder, error) {
	var reminders []domain.EventReminder
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/events/"+formatID(eventID)+"/reminders", nil, &reminders); err != nil {
		return nil, err
	}
	return reminders, nil
}

// CreateReminder adds a single reminder row to an event
func (c *Client) CreateReminder(ctx context.Context, eventID int64, in dto.ReminderInput) (*domain.EventReminder, error) {
	var reminder domain.EventReminder
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/events/"+formatID(eventID)+"/reminders", in, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// UpdateReminder rewrites one reminder row
func (c *Client) UpdateReminder(ctx context.Context, eventID, reminderID int64, in dto.ReminderInput) (*domain.EventReminder, error) {
	var reminder domain.EventReminder
	path := "/api/v1/events/" + formatID(eventID) + "/reminders/" + formatID(reminderID)
	if _, err := c.do(ctx, http.MethodPut, path, in, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// DeleteReminder removes one reminder row
func (c *Client) DeleteReminder(ctx context.Context, eventID, reminderID int64) error {
	path := "/api/v1/events/" + formatID(eventID) + "/reminders/" + formatID(reminderID)
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// SaveReminders submits the full reminder set for reconciliation
func (c *Client) SaveReminders(ctx context.Context, eventID int64, req *dto.SaveRemindersRequest) (*dto.SaveRemindersResponse, error) {
	var result dto.SaveRemindersResponse
	if _, err := c.do(ctx, http.MethodPut, "/api/v1/events/"+formatID(eventID)+"/reminders", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EventRegistrations fetches an owned event's attendee list
func (c *Client) EventRegistrations(ctx context.Context, eventID int64) ([]domain.Registration, error) {
	var regs []domain.Registration
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/registrations/events/"+formatID(eventID)+"/registrations", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// --- Registrations ---

// Register signs up for a free event
func (c *Client) Register(ctx context.Context, eventID int64, req *dto.EventRegistrationRequest) (*domain.Registration, error) {
	var reg domain.Registration
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/registrations/events/"+formatID(eventID)+"/register", req, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// GuestFormError is a blocking local check on the guest sign-up form. The
// form never reaches the wire while one of these is pending.
type GuestFormError struct {
	Message string
}

func (e *GuestFormError) Error() string { return e.Message }

func validateGuestForm(req *dto.GuestRegistrationRequest) error {
	req.Normalize()
	if ok, msg := req.Validate(); !ok {
		return &GuestFormError{Message: msg}
	}
	return nil
}

// RegisterGuest signs up a guest for a free event
func (c *Client) RegisterGuest(ctx context.Context, eventID int64, req *dto.GuestRegistrationRequest) (*domain.Registration, error) {
	if err := validateGuestForm(req); err != nil {
		return nil, err
	}
	var reg domain.Registration
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/registrations/events/"+formatID(eventID)+"/register/guest", req, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Checkout opens a paid registration checkout session
func (c *Client) Checkout(ctx context.Context, eventID int64, req *dto.EventRegistrationRequest) (*dto.CheckoutResponse, error) {
	var checkout dto.CheckoutResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/registrations/events/"+formatID(eventID)+"/register/payment", req, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// GuestCheckout opens a guest checkout session
func (c *Client) GuestCheckout(ctx context.Context, eventID int64, req *dto.GuestRegistrationRequest) (*dto.CheckoutResponse, error) {
	if err := validateGuestForm(req); err != nil {
		return nil, err
	}
	var checkout dto.CheckoutResponse
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/registrations/events/"+formatID(eventID)+"/register/guest/payment", req, &checkout); err != nil {
		return nil, err
	}
	return &checkout, nil
}

// ConfirmPayment finalizes a paid registration after checkout
func (c *Client) ConfirmPayment(ctx context.Context, sessionID string) (*domain.Registration, error) {
	var reg domain.Registration
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/registrations/confirm-payment", &dto.ConfirmPaymentRequest{
		SessionID: sessionID,
	}, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// MyRegistrations fetches the caller's registrations
func (c *Client) MyRegistrations(ctx context.Context) ([]domain.Registration, error) {
	var regs []domain.Registration
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/registrations/my", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// CancelRegistration cancels one of the caller's registrations
func (c *Client) CancelRegistration(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/registrations/"+formatID(id), nil, nil)
	return err
}

// VerifyQR forwards a scanned payload to the verification endpoint. A logged
// in organizer hits the organizer route so the scan records who checked the
// ticket; without a session the public entry-gate route is used.
func (c *Client) VerifyQR(ctx context.Context, qrCodeData string) (*dto.VerifyQRResponse, error) {
	path := "/api/v1/registrations/verify-qr"
	if c.Session() != nil {
		path = "/api/v1/registrations/organizer/verify-qr"
	}
	var result dto.VerifyQRResponse
	if _, err := c.do(ctx, http.MethodPost, path, &dto.VerifyQRRequest{
		QRCodeData: qrCodeData,
	}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- Organizer finance ---

// Finance bundles the organizer earnings view
type Finance struct {
	Balance *domain.OrganizerBalance
	Payouts []domain.Payout
}

// FetchFinance loads the balance and payout history concurrently
func (c *Client) FetchFinance(ctx context.Context) (*Finance, error) {
	var out Finance
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.do(gctx, http.MethodGet, "/api/v1/marketplace/my-balance", nil, &out.Balance)
		return err
	})
	g.Go(func() error {
		_, err := c.do(gctx, http.MethodGet, "/api/v1/marketplace/my-payouts", nil, &out.Payouts)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestPayout opens a withdrawal request
func (c *Client) RequestPayout(ctx context.Context, req *dto.PayoutRequestInput) (*domain.Payout, error) {
	var payout domain.Payout
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/marketplace/payouts/request", req, &payout); err != nil {
		return nil, err
	}
	return &payout, nil
}

// --- Uploads ---

// UploadImage sends an image as multipart form data and returns its URL
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/upload/image", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.Logout()
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: "upload failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return "", apiErr
	}

	var data struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.URL, nil
}

// DeleteImage removes one of the caller's uploaded images
func (c *Client) DeleteImage(ctx context.Context, filePath string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/upload/image?file_path="+url.QueryEscape(filePath), nil, nil)
	return err
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func listQuery(q *dto.ListEventsQuery) string {
	if q == nil {
		return ""
	}
	values := url.Values{}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.CategoryID != nil {
		values.Set("category_id", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.TagID != nil {
		values.Set("tag_id", strconv.FormatInt(*q.TagID, 10))
	}
	if q.City != "" {
		values.Set("city", q.City)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}
