package feed

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"faceattend/internal/logger"
	"faceattend/internal/models"
)

// Poller periodically fetches the day's attendance records from the backend
// and keeps a filtered, newest-first snapshot. Every fetch fully replaces the
// snapshot; a failed or malformed fetch leaves the previous snapshot intact.
type Poller struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *logger.Logger

	mu      sync.Mutex
	records []models.AttendanceRecord

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewPoller creates a poller against the backend's get-attendance endpoint.
func NewPoller(serverURL string, interval time.Duration, logger *logger.Logger) *Poller {
	return &Poller{
		url:      strings.TrimRight(serverURL, "/") + "/api/get-attendance",
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start fetches once immediately and then on every interval until Stop.
func (p *Poller) Start() {
	p.Refresh()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				p.Refresh()
			}
		}
	}()
}

// Refresh fetches the record set once, out of band of the timer. Used by the
// manual refresh control and by the scheduled ticks.
func (p *Poller) Refresh() {
	resp, err := p.client.Get(p.url)
	if err != nil {
		p.logger.Error("Failed to fetch attendance: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("Attendance feed returned status %d", resp.StatusCode)
		return
	}

	// A nil slice distinguishes a missing attendance key from an empty list.
	var payload struct {
		Attendance *[]models.AttendanceRecord `json:"attendance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		p.logger.Error("Failed to decode attendance feed: %v", err)
		return
	}
	if payload.Attendance == nil {
		p.logger.Warning("Attendance data missing from response")
		return
	}

	today := p.now().Format("2006-01-02")

	var todays []models.AttendanceRecord
	for _, record := range *payload.Attendance {
		if record.Date() == today {
			todays = append(todays, record)
		}
	}

	// Newest first. The timestamp format sorts lexicographically.
	sort.Slice(todays, func(i, j int) bool {
		return todays[i].Timestamp > todays[j].Timestamp
	})

	p.mu.Lock()
	p.records = todays
	p.mu.Unlock()
}

// Records returns the current snapshot, newest first.
func (p *Poller) Records() []models.AttendanceRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	records := make([]models.AttendanceRecord, len(p.records))
	copy(records, p.records)
	return records
}

// Stop halts the polling timer. No fetches occur after Stop returns.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
