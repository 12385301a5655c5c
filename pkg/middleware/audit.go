package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionCreate    AuditAction = "create"
	AuditActionUpdate    AuditAction = "update"
	AuditActionDelete    AuditAction = "delete"
	AuditActionSuspend   AuditAction = "suspend"
	AuditActionUnsuspend AuditAction = "unsuspend"
	AuditActionPromote   AuditAction = "promote"
	AuditActionFeature   AuditAction = "feature"
	AuditActionFlag      AuditAction = "flag"
	AuditActionPayout    AuditAction = "payout"
)

// AuditEntry represents a single audit log entry
type AuditEntry struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id,omitempty"`
	UserEmail    string      `json:"user_email,omitempty"`
	UserRole     string      `json:"user_role,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Path         string      `json:"path"`
	Method       string      `json:"method"`
	Status       int         `json:"status"`
	IPAddress    string      `json:"ip_address,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditConfig holds configuration for the audit middleware
type AuditConfig struct {
	// DB is the PostgreSQL connection pool for storing audit logs
	DB *pgxpool.Pool
	// BufferSize is the size of the async audit buffer (default: 1000)
	BufferSize int
	// FlushInterval is how often to flush the buffer (default: 5 seconds)
	FlushInterval time.Duration
	// BatchSize is the maximum number of entries to insert in one batch (default: 100)
	BatchSize int
	// PathPrefixes limits auditing to matching paths (admin surfaces)
	PathPrefixes []string
}

// DefaultAuditConfig returns default configuration covering the admin and
// payout surfaces
func DefaultAuditConfig(db *pgxpool.Pool) *AuditConfig {
	return &AuditConfig{
		DB:            db,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		BatchSize:     100,
		PathPrefixes: []string{
			"/api/v1/superadmin",
			"/api/v1/marketplace/payouts",
			"/api/v1/marketplace/commission",
		},
	}
}

// AuditLogger handles async audit logging
type AuditLogger struct {
	config    *AuditConfig
	buffer    chan *AuditEntry
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// For testing: collect entries instead of writing to DB
	testMode    bool
	testEntries []*AuditEntry
	testMu      sync.Mutex
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(config *AuditConfig) *AuditLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	ctx, cancel := context.WithCancel(context.Background())

	al := &AuditLogger{
		config: config,
		buffer: make(chan *AuditEntry, config.BufferSize),
		ctx:    ctx,
		cancel: cancel,
	}

	al.wg.Add(1)
	go al.worker()

	return al
}

// Log adds an audit entry to the buffer (non-blocking)
func (al *AuditLogger) Log(entry *AuditEntry) {
	select {
	case al.buffer <- entry:
	default:
		// buffer full, drop; auditing must not block requests
	}
}

// Close gracefully shuts down the audit logger
func (al *AuditLogger) Close() error {
	al.closeOnce.Do(func() {
		al.cancel()
		close(al.buffer)
		al.wg.Wait()
	})
	return nil
}

// SetTestMode enables test mode which collects entries instead of writing to DB
func (al *AuditLogger) SetTestMode(enabled bool) {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	al.testMode = enabled
	if enabled {
		al.testEntries = make([]*AuditEntry, 0)
	}
}

// GetTestEntries returns collected test entries (only in test mode)
func (al *AuditLogger) GetTestEntries() []*AuditEntry {
	al.testMu.Lock()
	defer al.testMu.Unlock()
	result := make([]*AuditEntry, len(al.testEntries))
	copy(result, al.testEntries)
	return result
}

func (al *AuditLogger) worker() {
	defer al.wg.Done()

	ticker := time.NewTicker(al.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]*AuditEntry, 0, al.config.BatchSize)

	for {
		select {
		case entry, ok := <-al.buffer:
			if !ok {
				if len(batch) > 0 {
					al.flush(batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= al.config.BatchSize {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				al.flush(batch)
				batch = make([]*AuditEntry, 0, al.config.BatchSize)
			}
		case <-al.ctx.Done():
			if len(batch) > 0 {
				al.flush(batch)
			}
			return
		}
	}
}

func (al *AuditLogger) flush(entries []*AuditEntry) {
	if len(entries) == 0 {
		return
	}

	al.testMu.Lock()
	if al.testMode {
		al.testEntries = append(al.testEntries, entries...)
		al.testMu.Unlock()
		return
	}
	al.testMu.Unlock()

	if al.config.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := `
		INSERT INTO audit_logs (
			id, user_id, user_email, user_role,
			action, resource_type, resource_id,
			path, method, status, ip_address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for _, entry := range entries {
		_, err := al.config.DB.Exec(ctx, query,
			entry.ID, nullable(entry.UserID), entry.UserEmail, entry.UserRole,
			string(entry.Action), entry.ResourceType, nullable(entry.ResourceID),
			entry.Path, entry.Method, entry.Status, entry.IPAddress, entry.CreatedAt,
		)
		if err != nil {
			// audit writes never fail the request
			continue
		}
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// AuditMiddleware records admin mutations asynchronously. GET/HEAD/OPTIONS
// and paths outside the configured prefixes are skipped.
func AuditMiddleware(logger *AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method == "GET" || method == "HEAD" || method == "OPTIONS" {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		audited := false
		for _, prefix := range logger.config.PathPrefixes {
			if strings.HasPrefix(path, prefix) {
				audited = true
				break
			}
		}
		if !audited {
			c.Next()
			return
		}

		c.Next()

		userID, _ := GetUserID(c)
		email, _ := GetEmail(c)
		role, _ := GetRole(c)

		resourceType, resourceID := extractResource(path)

		logger.Log(&AuditEntry{
			ID:           uuid.New().String(),
			UserID:       userID,
			UserEmail:    email,
			UserRole:     role,
			Action:       mapAction(method, path),
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Path:         path,
			Method:       method,
			Status:       c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapAction(method, path string) AuditAction {
	switch {
	case strings.HasSuffix(path, "/suspend"):
		return AuditActionSuspend
	case strings.HasSuffix(path, "/unsuspend"):
		return AuditActionUnsuspend
	case strings.HasSuffix(path, "/promote"):
		return AuditActionPromote
	case strings.HasSuffix(path, "/feature"), strings.HasSuffix(path, "/unfeature"):
		return AuditActionFeature
	case strings.HasSuffix(path, "/flag"), strings.HasSuffix(path, "/unflag"):
		return AuditActionFlag
	case strings.Contains(path, "/payouts"):
		return AuditActionPayout
	}

	switch method {
	case "POST":
		return AuditActionCreate
	case "PUT", "PATCH":
		return AuditActionUpdate
	case "DELETE":
		return AuditActionDelete
	}
	return AuditActionUpdate
}

// extractResource pulls "users"/"events"/"payouts" and the trailing ID out of
// an admin path like /api/v1/superadmin/users/42/suspend
func extractResource(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		switch part {
		case "users", "events", "payouts", "commission", "categories", "tags":
			resourceType := part
			resourceID := ""
			if i+1 < len(parts) {
				next := parts[i+1]
				if next != "" && !isActionSegment(next) {
					resourceID = next
				}
			}
			return resourceType, resourceID
		}
	}
	return "", ""
}

func isActionSegment(s string) bool {
	switch s {
	case "suspend", "unsuspend", "promote", "feature", "unfeature",
		"flag", "unflag", "notes", "settings", "request":
		return true
	}
	return false
}
