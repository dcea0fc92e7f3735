package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"pvedeploy/internal/model"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Progress 部署进度快照
type Progress struct {
	DeploymentID int64                  `json:"deployment_id"`
	RunID        string                 `json:"run_id"`
	Status       model.DeploymentStatus `json:"status"`
	Message      string                 `json:"message"`
	ErrorDetail  string                 `json:"error_detail,omitempty"`
	VMID         uint32                 `json:"vmid,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func progressFromRecord(dep *model.Deployment) Progress {
	return Progress{
		DeploymentID: dep.Id,
		RunID:        dep.RunID,
		Status:       dep.Status,
		Message:      dep.StatusMessage,
		ErrorDetail:  dep.ErrorMessage,
		VMID:         dep.VMID,
		UpdatedAt:    dep.UpdateTime,
	}
}

// ProgressStore 有界的进度缓存：进行中的部署常驻，已结束的按 LRU 淘汰并按 TTL 清理
type ProgressStore struct {
	mu     sync.RWMutex
	active map[int64]Progress
	done   *lru.Cache[int64, Progress]
	ttl    time.Duration
	subs   map[int64]map[chan Progress]struct{}
}

func NewProgressStore(capacity int, ttl time.Duration) *ProgressStore {
	if capacity <= 0 {
		capacity = 1024
	}
	done, _ := lru.New[int64, Progress](capacity)
	return &ProgressStore{
		active: make(map[int64]Progress),
		done:   done,
		ttl:    ttl,
		subs:   make(map[int64]map[chan Progress]struct{}),
	}
}

func (s *ProgressStore) Put(p Progress) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	if p.Status.IsTerminal() {
		delete(s.active, p.DeploymentID)
		s.done.Add(p.DeploymentID, p)
	} else {
		s.done.Remove(p.DeploymentID)
		s.active[p.DeploymentID] = p
	}
	for ch := range s.subs[p.DeploymentID] {
		select {
		case ch <- p:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *ProgressStore) Get(id int64) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.active[id]; ok {
		return p, true
	}
	return s.done.Peek(id)
}

func (s *ProgressStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, id)
	s.done.Remove(id)
}

func (s *ProgressStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active) + s.done.Len()
}

// Purge 清理超过 TTL 的已结束条目，返回清理数量
func (s *ProgressStore) Purge(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.done.Keys() {
		p, ok := s.done.Peek(id)
		if ok && now.Sub(p.UpdatedAt) > s.ttl {
			s.done.Remove(id)
			n++
		}
	}
	return n
}

// Subscribe 订阅某个部署的进度；慢消费者会丢失中间状态
func (s *ProgressStore) Subscribe(id int64) (<-chan Progress, func()) {
	ch := make(chan Progress, 16)
	s.mu.Lock()
	if s.subs[id] == nil {
		s.subs[id] = make(map[chan Progress]struct{})
	}
	s.subs[id][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[id], ch)
			if len(s.subs[id]) == 0 {
				delete(s.subs, id)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

// ProgressMirror 多实例部署时共享进度
type ProgressMirror interface {
	Publish(ctx context.Context, p Progress) error
	Load(ctx context.Context, id int64) (*Progress, error)
	Remove(ctx context.Context, id int64) error
}

type RedisProgressMirror struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisProgressMirror(rdb *redis.Client, ttl time.Duration) *RedisProgressMirror {
	return &RedisProgressMirror{rdb: rdb, ttl: ttl}
}

func progressKey(id int64) string {
	return "pvedeploy:progress:" + strconv.FormatInt(id, 10)
}

func (m *RedisProgressMirror) Publish(ctx context.Context, p Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, progressKey(p.DeploymentID), b, m.ttl).Err()
}

func (m *RedisProgressMirror) Load(ctx context.Context, id int64) (*Progress, error) {
	b, err := m.rdb.Get(ctx, progressKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p Progress
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *RedisProgressMirror) Remove(ctx context.Context, id int64) error {
	return m.rdb.Del(ctx, progressKey(id)).Err()
}
