package logger

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"sync"
	"time"
)

// Publisher ships a digest to the message bus.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig controls the error digest. A digest is published every
// TimeInterval, or earlier once CountThreshold distinct lines are pending.
type CollectionConfig struct {
	TimeInterval   time.Duration
	CountThreshold int
	Topic          string
	Publisher      Publisher
	IncludeWarn    bool
	Environment    string
}

// DigestEntry is one distinct log line and how often it repeated.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Caller    string                 `json:"caller"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Digest is the payload of one flush. Entries are ordered by count, most
// frequent first.
type Digest struct {
	Environment string        `json:"environment,omitempty"`
	Host        string        `json:"host"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	Total       int           `json:"total"`
	Entries     []DigestEntry `json:"entries"`
}

// LogCollector folds repeated log lines into counted entries.
type LogCollector struct {
	cfg  CollectionConfig
	host string
	now  func() time.Time

	mu      sync.Mutex
	pending map[uint64]*DigestEntry
	from    time.Time

	full chan struct{}
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewLogCollector(cfg *CollectionConfig) *LogCollector {
	c := &LogCollector{
		cfg:     *cfg,
		now:     time.Now,
		pending: make(map[uint64]*DigestEntry),
		full:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if c.cfg.TimeInterval <= 0 {
		c.cfg.TimeInterval = 30 * time.Second
	}
	if c.cfg.CountThreshold <= 0 {
		c.cfg.CountThreshold = 100
	}
	c.host, _ = os.Hostname()

	c.wg.Add(1)
	go c.loop()
	return c
}

// AddLog records one occurrence. It never blocks on the publisher.
func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	key := lineKey(level, message, caller, fields)
	now := c.now()

	c.mu.Lock()
	e, ok := c.pending[key]
	if !ok {
		if len(c.pending) == 0 {
			c.from = now
		}
		e = &DigestEntry{Level: level, Message: message, Caller: caller, Fields: fields, FirstSeen: now}
		c.pending[key] = e
	}
	e.Count++
	e.LastSeen = now
	full := len(c.pending) >= c.cfg.CountThreshold
	c.mu.Unlock()

	if full {
		select {
		case c.full <- struct{}{}:
		default:
		}
	}
}

// lineKey identifies a line by level, message, caller and fields in key order.
func lineKey(level, message, caller string, fields map[string]interface{}) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%s", level, message, caller)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "\x00%s=%v", k, fields[k])
	}
	return h.Sum64()
}

func (c *LogCollector) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.ship()
		case <-c.full:
			c.ship()
		case <-c.done:
			c.ship()
			return
		}
	}
}

// take swaps out everything pending as one digest.
func (c *LogCollector) take() (Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return Digest{}, false
	}

	d := Digest{
		Environment: c.cfg.Environment,
		Host:        c.host,
		From:        c.from,
		To:          c.now(),
		Entries:     make([]DigestEntry, 0, len(c.pending)),
	}
	for _, e := range c.pending {
		d.Entries = append(d.Entries, *e)
		d.Total += e.Count
	}
	c.pending = make(map[uint64]*DigestEntry)

	sort.Slice(d.Entries, func(i, j int) bool {
		a, b := d.Entries[i], d.Entries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.FirstSeen.Before(b.FirstSeen)
	})
	return d, true
}

func (c *LogCollector) ship() {
	d, ok := c.take()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// stderr, not the logger this collector is attached to
	if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, d); err != nil {
		fmt.Fprintf(os.Stderr, "log digest: publish to %s: %v\n", c.cfg.Topic, err)
	}
}

// Close publishes what is pending and stops the collector. It is safe to
// call more than once.
func (c *LogCollector) Close() {
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
}
