package sync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go-pos-sync/internal/model"
	"go-pos-sync/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOffline is returned by Connect when no remote backend is configured.
var ErrOffline = errors.New("no remote backend configured")

// Status is the connectivity snapshot exposed for UI display only. Nothing
// in the cart path reads it.
type Status struct {
	Connected    bool       `json:"connected"`
	Downloading  bool       `json:"downloading"`
	Uploading    bool       `json:"uploading"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	TerminalID   uuid.UUID  `json:"terminal_id"`
}

// Client replicates between the local replica and the remote backend:
// catalog rows (operators, categories, products) download into the local
// store, finished sales upload out of it. Draft sales never leave the
// terminal. A cycle that fails flips Connected off and the next tick
// retries; the terminal keeps functioning offline indefinitely.
type Client struct {
	local    *gorm.DB
	remote   *gorm.DB
	wsHub    *ws.Hub
	interval time.Duration

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
}

func NewClient(local, remote *gorm.DB, hub *ws.Hub, interval time.Duration) *Client {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Client{
		local:    local,
		remote:   remote,
		wsHub:    hub,
		interval: interval,
	}
}

// Connect registers the terminal and starts the background cycle loop.
// Repeated calls while connected are no-ops.
func (c *Client) Connect(ctx context.Context) error {
	if c.remote == nil {
		return ErrOffline
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.Register(); err != nil {
		log.Println("sync: terminal registration failed:", err)
	}

	go c.loop(ctx)
	return nil
}

// Disconnect stops the cycle loop and flips the connectivity flag off
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.status.Connected = false
	c.mu.Unlock()
	c.publishStatus()
}

func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Client) loop(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// First cycle immediately so the catalog appears without waiting a tick
	c.runCycle()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runCycle()
		}
	}
}

func (c *Client) runCycle() {
	if err := c.SyncNow(); err != nil {
		log.Println("sync: cycle failed:", err)
	}
}

// Register performs the anonymous credential exchange: the terminal id is
// persisted locally across restarts, and a fresh token is upserted into
// the remote terminals table.
func (c *Client) Register() error {
	if c.remote == nil {
		return ErrOffline
	}

	terminal, err := c.localTerminal()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.status.TerminalID = terminal.ID
	c.mu.Unlock()

	terminal.Token = uuid.New().String()
	now := time.Now()
	terminal.LastSeenAt = &now

	if err := c.remote.Clauses(clause.OnConflict{UpdateAll: true}).Create(terminal).Error; err != nil {
		return err
	}
	return c.local.Save(terminal).Error
}

// localTerminal loads the persisted terminal identity, creating one on
// first run
func (c *Client) localTerminal() (*model.Terminal, error) {
	var terminal model.Terminal
	err := c.local.First(&terminal).Error
	if err == nil {
		return &terminal, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	terminal = model.Terminal{
		ID:           uuid.New(),
		RegisteredAt: time.Now(),
	}
	if err := c.local.Create(&terminal).Error; err != nil {
		return nil, err
	}
	return &terminal, nil
}

// SyncNow runs one download+upload cycle and updates the status flags
func (c *Client) SyncNow() error {
	if c.remote == nil {
		return ErrOffline
	}

	c.setFlags(true, true, false)
	changed, err := c.download()
	c.setFlags(err == nil, false, false)
	if err != nil {
		c.publishStatus()
		return err
	}
	if changed {
		if c.wsHub != nil {
			go c.wsHub.Publish("catalog_update", nil)
		}
	}

	c.setFlags(true, false, true)
	err = c.upload()
	now := time.Now()

	c.mu.Lock()
	c.status.Connected = err == nil
	c.status.Uploading = false
	if err == nil {
		c.status.LastSyncedAt = &now
	}
	c.mu.Unlock()

	c.publishStatus()
	return err
}

// download upserts the backend-owned tables into the local replica.
// Returns true when any rows arrived.
func (c *Client) download() (bool, error) {
	changed := false

	var operators []model.Operator
	if err := c.remote.Find(&operators).Error; err != nil {
		return changed, err
	}
	if len(operators) > 0 {
		if err := c.local.Clauses(clause.OnConflict{UpdateAll: true}).Create(&operators).Error; err != nil {
			return changed, err
		}
		changed = true
	}

	var categories []model.Category
	if err := c.remote.Find(&categories).Error; err != nil {
		return changed, err
	}
	if len(categories) > 0 {
		if err := c.local.Clauses(clause.OnConflict{UpdateAll: true}).Create(&categories).Error; err != nil {
			return changed, err
		}
		changed = true
	}

	var products []model.Product
	if err := c.remote.Find(&products).Error; err != nil {
		return changed, err
	}
	if len(products) > 0 {
		if err := c.local.Clauses(clause.OnConflict{UpdateAll: true}).Create(&products).Error; err != nil {
			return changed, err
		}
		changed = true
	}

	return changed, nil
}

// upload pushes finished, not-yet-synced sales with their lines to the
// remote and marks them synced locally
func (c *Client) upload() error {
	var sales []model.Sale
	err := c.local.Preload("Items").
		Where("status <> ? AND synced = ?", model.SaleDraft, false).
		Find(&sales).Error
	if err != nil {
		return err
	}

	for i := range sales {
		sale := sales[i]
		items := sale.Items
		sale.Items = nil
		sale.Operator = nil

		if err := c.remote.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sale).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			for j := range items {
				items[j].Product = nil
			}
			if err := c.remote.Clauses(clause.OnConflict{UpdateAll: true}).Create(&items).Error; err != nil {
				return err
			}
		}

		if err := c.local.Model(&model.Sale{}).Where("id = ?", sale.ID).Update("synced", true).Error; err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) setFlags(connected, downloading, uploading bool) {
	c.mu.Lock()
	c.status.Connected = connected
	c.status.Downloading = downloading
	c.status.Uploading = uploading
	c.mu.Unlock()
}

func (c *Client) publishStatus() {
	if c.wsHub == nil {
		return
	}
	status := c.Status()
	go c.wsHub.Publish("sync_status", map[string]interface{}{
		"connected":      status.Connected,
		"downloading":    status.Downloading,
		"uploading":      status.Uploading,
		"last_synced_at": status.LastSyncedAt,
	})
}
