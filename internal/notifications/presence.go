package notifications

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	presenceOnlineSetKey  = "presence:online"
	presenceLastSeenKeyNS = "presence:last_seen:"
	presenceLastSeenTTL   = 90 * time.Second
	presenceOfflineGrace  = 5 * time.Second
	presenceReapInterval  = 60 * time.Second
)

// PresenceConfig overrides the presence defaults; zero values keep them.
type PresenceConfig struct {
	LastSeenTTL        time.Duration
	OfflineGracePeriod time.Duration
	ReapInterval       time.Duration
}

// PresenceTracker answers "does this user have a live connection anywhere".
// Local connection counts are authoritative for this instance; a Redis
// mirror (online set plus per-user last-seen key with TTL) extends the
// answer across instances. The fan-out uses it to skip realtime publishes
// for recipients who cannot receive them.
type PresenceTracker struct {
	rdb *redis.Client

	mu         sync.RWMutex
	connCounts map[uint]int
	graceTimer map[uint]*time.Timer

	lastSeenTTL  time.Duration
	offlineGrace time.Duration
	reapInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewPresenceTracker creates a tracker and, when Redis is available, starts
// a reaper that clears stale entries from the online set.
func NewPresenceTracker(rdb *redis.Client, cfg PresenceConfig) *PresenceTracker {
	p := &PresenceTracker{
		rdb:          rdb,
		connCounts:   make(map[uint]int),
		graceTimer:   make(map[uint]*time.Timer),
		lastSeenTTL:  presenceLastSeenTTL,
		offlineGrace: presenceOfflineGrace,
		reapInterval: presenceReapInterval,
		stopCh:       make(chan struct{}),
	}
	if cfg.LastSeenTTL > 0 {
		p.lastSeenTTL = cfg.LastSeenTTL
	}
	if cfg.OfflineGracePeriod > 0 {
		p.offlineGrace = cfg.OfflineGracePeriod
	}
	if cfg.ReapInterval > 0 {
		p.reapInterval = cfg.ReapInterval
	}

	if p.rdb != nil {
		go p.reapLoop()
	}
	return p
}

func (p *PresenceTracker) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.mu.Lock()
		for userID, timer := range p.graceTimer {
			timer.Stop()
			delete(p.graceTimer, userID)
		}
		p.mu.Unlock()
	})
}

// Register counts a new connection for the user and refreshes the Redis
// mirror. A pending offline grace timer from a recent disconnect is
// cancelled.
func (p *PresenceTracker) Register(ctx context.Context, userID uint) {
	p.mu.Lock()
	if t, ok := p.graceTimer[userID]; ok {
		t.Stop()
		delete(p.graceTimer, userID)
	}
	p.connCounts[userID]++
	p.mu.Unlock()

	p.Touch(ctx, userID)
}

// Touch refreshes the user's Redis presence. Called on register and on any
// sign of life from the peer (message, pong).
func (p *PresenceTracker) Touch(ctx context.Context, userID uint) {
	if p.rdb == nil {
		return
	}
	uid := strconv.FormatUint(uint64(userID), 10)
	if err := p.rdb.SAdd(ctx, presenceOnlineSetKey, uid).Err(); err != nil {
		log.Printf("presence SADD failed for user %d: %v", userID, err)
	}
	if err := p.rdb.SetEx(ctx, presenceLastSeenKey(userID), strconv.FormatInt(time.Now().Unix(), 10), p.lastSeenTTL).Err(); err != nil {
		log.Printf("presence SETEX failed for user %d: %v", userID, err)
	}
}

// Unregister drops one connection. When the last one goes, the Redis entry
// is removed only after the grace window so a quick reconnect keeps the
// user online.
func (p *PresenceTracker) Unregister(ctx context.Context, userID uint) {
	p.mu.Lock()
	if n, ok := p.connCounts[userID]; ok {
		n--
		if n > 0 {
			p.connCounts[userID] = n
			p.mu.Unlock()
			return
		}
		delete(p.connCounts, userID)
	}

	if t, ok := p.graceTimer[userID]; ok {
		t.Stop()
	}
	p.graceTimer[userID] = time.AfterFunc(p.offlineGrace, func() {
		p.expireOffline(context.Background(), userID)
	})
	p.mu.Unlock()
}

// IsOnline reports whether the user has a live connection on this instance
// or, per the Redis mirror, anywhere else.
func (p *PresenceTracker) IsOnline(ctx context.Context, userID uint) bool {
	p.mu.RLock()
	local := p.connCounts[userID] > 0
	p.mu.RUnlock()
	if local {
		return true
	}

	if p.rdb == nil {
		return false
	}
	exists, err := p.rdb.Exists(ctx, presenceLastSeenKey(userID)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

// expireOffline runs after the grace window: if the user has not
// reconnected here and no other instance refreshed their last-seen key,
// the online-set entry is dropped.
func (p *PresenceTracker) expireOffline(ctx context.Context, userID uint) {
	p.mu.Lock()
	if p.connCounts[userID] > 0 {
		delete(p.graceTimer, userID)
		p.mu.Unlock()
		return
	}
	delete(p.graceTimer, userID)
	p.mu.Unlock()

	if p.rdb == nil {
		return
	}
	exists, err := p.rdb.Exists(ctx, presenceLastSeenKey(userID)).Result()
	if err == nil && exists > 0 {
		// Another instance still holds a connection for this user.
		return
	}
	_ = p.rdb.SRem(ctx, presenceOnlineSetKey, strconv.FormatUint(uint64(userID), 10)).Err()
}

// reapOnce drops online-set members whose last-seen key expired, catching
// entries orphaned by a crashed instance.
func (p *PresenceTracker) reapOnce(ctx context.Context) {
	if p.rdb == nil {
		return
	}
	members, err := p.rdb.SMembers(ctx, presenceOnlineSetKey).Result()
	if err != nil {
		return
	}
	for _, raw := range members {
		id64, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			continue
		}
		exists, existsErr := p.rdb.Exists(ctx, presenceLastSeenKey(uint(id64))).Result()
		if existsErr != nil || exists > 0 {
			continue
		}
		_ = p.rdb.SRem(ctx, presenceOnlineSetKey, raw).Err()
	}
}

func (p *PresenceTracker) reapLoop() {
	ticker := time.NewTicker(p.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(context.Background())
		}
	}
}

func presenceLastSeenKey(userID uint) string {
	return presenceLastSeenKeyNS + strconv.FormatUint(uint64(userID), 10)
}
