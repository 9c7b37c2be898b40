package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"clawdx/internal/domain"
	"clawdx/internal/repository"
)

// mockAgentRepo es un AgentRepository en memoria. Claim implementa la
// misma semántica condicional que la implementación Pg, protegida por
// mutex para poder ejercitar carreras reales en los tests.
type mockAgentRepo struct {
	mu     sync.Mutex
	agents map[string]domain.Agent

	claimErr       error
	touchErr       error
	touchCalls     int
	claimCallCount int
}

func newMockAgentRepo(agents ...domain.Agent) *mockAgentRepo {
	m := &mockAgentRepo{agents: make(map[string]domain.Agent)}
	for _, a := range agents {
		m.agents[a.ID] = a
	}
	return m
}

func (m *mockAgentRepo) Create(_ context.Context, agent domain.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[agent.ID] = agent
	return nil
}

func (m *mockAgentRepo) GetByID(_ context.Context, id string) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return domain.Agent{}, pgx.ErrNoRows
	}
	return agent, nil
}

func (m *mockAgentRepo) GetByName(_ context.Context, name string) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.Name == name {
			return a, nil
		}
	}
	return domain.Agent{}, pgx.ErrNoRows
}

func (m *mockAgentRepo) GetByClaimCode(_ context.Context, code string) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.ClaimCode != "" && a.ClaimCode == code {
			return a, nil
		}
	}
	return domain.Agent{}, pgx.ErrNoRows
}

func (m *mockAgentRepo) GetByAPIKey(_ context.Context, apiKey string) (domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.agents {
		if a.APIKey == apiKey && a.IsActive {
			return a, nil
		}
	}
	return domain.Agent{}, pgx.ErrNoRows
}

func (m *mockAgentRepo) Claim(_ context.Context, id, claimCode, newAPIKey string, claimedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimCallCount++
	if m.claimErr != nil {
		return false, m.claimErr
	}
	agent, ok := m.agents[id]
	if !ok || agent.ClaimCode != claimCode {
		return false, nil
	}
	agent.APIKey = newAPIKey
	agent.IsClaimed = true
	agent.ClaimedAt = &claimedAt
	agent.ClaimCode = ""
	m.agents[id] = agent
	return true, nil
}

func (m *mockAgentRepo) TouchLastActive(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchCalls++
	if m.touchErr != nil {
		return m.touchErr
	}
	agent, ok := m.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.LastActive = &at
	m.agents[id] = agent
	return nil
}

func (m *mockAgentRepo) MarkVerified(_ context.Context, id, xHandle string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.IsVerified = true
	agent.IsClaimed = true
	if agent.ClaimedAt == nil {
		agent.ClaimedAt = &at
	}
	agent.OwnerXHandle = xHandle
	m.agents[id] = agent
	return nil
}

func (m *mockAgentRepo) ListTopByAura(_ context.Context, limit, offset int) ([]domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var agents []domain.Agent
	for _, a := range m.agents {
		if a.IsActive {
			agents = append(agents, a)
		}
	}
	// Orden por aura descendente, suficiente para los tests.
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			if agents[j].Aura > agents[i].Aura {
				agents[i], agents[j] = agents[j], agents[i]
			}
		}
	}
	return paginate(agents, limit, offset), nil
}

func (m *mockAgentRepo) ListActive(_ context.Context, limit, offset int) ([]domain.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var agents []domain.Agent
	for _, a := range m.agents {
		if a.IsActive {
			agents = append(agents, a)
		}
	}
	return paginate(agents, limit, offset), nil
}

func (m *mockAgentRepo) CountActive(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.agents {
		if a.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockAgentRepo) CountVerified(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.agents {
		if a.IsActive && a.IsVerified {
			n++
		}
	}
	return n, nil
}

func (m *mockAgentRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, a := range m.agents {
		if a.IsActive && !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *mockAgentRepo) IncrementPostCount(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	agent, ok := m.agents[id]
	if !ok {
		return pgx.ErrNoRows
	}
	agent.PostCount += delta
	m.agents[id] = agent
	return nil
}

func (m *mockAgentRepo) AdjustFollowCounts(_ context.Context, followerID, followingID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if follower, ok := m.agents[followerID]; ok {
		follower.FollowingCount += delta
		m.agents[followerID] = follower
	}
	if following, ok := m.agents[followingID]; ok {
		following.FollowerCount += delta
		m.agents[followingID] = following
	}
	return nil
}

func paginate(agents []domain.Agent, limit, offset int) []domain.Agent {
	if offset >= len(agents) {
		return nil
	}
	agents = agents[offset:]
	if limit > 0 && len(agents) > limit {
		agents = agents[:limit]
	}
	return agents
}

// mockPostRepo es un PostRepository en memoria.
type mockPostRepo struct {
	mu    sync.Mutex
	posts map[string]domain.Post
}

func newMockPostRepo(posts ...domain.Post) *mockPostRepo {
	m := &mockPostRepo{posts: make(map[string]domain.Post)}
	for _, p := range posts {
		m.posts[p.ID] = p
	}
	return m
}

func (m *mockPostRepo) Create(_ context.Context, post domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[post.ID] = post
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return domain.Post{}, pgx.ErrNoRows
	}
	return post, nil
}

func (m *mockPostRepo) List(_ context.Context, filter repository.PostFilter) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []domain.Post
	for _, p := range m.posts {
		if filter.AgentID != "" && p.AgentID != filter.AgentID {
			continue
		}
		if filter.TopLevelOnly && p.ReplyToID != "" {
			continue
		}
		posts = append(posts, p)
	}
	// Por fecha descendente, como la implementación Pg.
	for i := 0; i < len(posts); i++ {
		for j := i + 1; j < len(posts); j++ {
			swap := false
			switch filter.OrderBy {
			case "reply_count":
				swap = posts[j].ReplyCount > posts[i].ReplyCount
			default:
				swap = posts[j].CreatedAt.After(posts[i].CreatedAt)
			}
			if swap {
				posts[i], posts[j] = posts[j], posts[i]
			}
		}
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(posts) {
			return nil, nil
		}
		posts = posts[filter.Offset:]
	}
	if filter.Limit > 0 && len(posts) > filter.Limit {
		posts = posts[:filter.Limit]
	}
	return posts, nil
}

func (m *mockPostRepo) ListReplies(_ context.Context, postID string) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var replies []domain.Post
	for _, p := range m.posts {
		if p.ReplyToID == postID {
			replies = append(replies, p)
		}
	}
	return replies, nil
}

func (m *mockPostRepo) ListByHashtag(_ context.Context, tag string, limit, offset int) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []domain.Post
	for _, p := range m.posts {
		for _, t := range p.Hashtags {
			if t == tag {
				posts = append(posts, p)
				break
			}
		}
	}
	return posts, nil
}

func (m *mockPostRepo) ListRecentHashtags(_ context.Context, since time.Time) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result [][]string
	for _, p := range m.posts {
		if len(p.Hashtags) > 0 && !p.CreatedAt.Before(since) {
			result = append(result, p.Hashtags)
		}
	}
	return result, nil
}

func (m *mockPostRepo) IncrementLikeCount(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	post.LikeCount += delta
	m.posts[id] = post
	return nil
}

func (m *mockPostRepo) IncrementReplyCount(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	post.ReplyCount += delta
	m.posts[id] = post
	return nil
}

func (m *mockPostRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.posts)), nil
}

// mockFollowRepo es un FollowRepository en memoria.
type mockFollowRepo struct {
	mu      sync.Mutex
	follows map[string]domain.Follow
}

func newMockFollowRepo() *mockFollowRepo {
	return &mockFollowRepo{follows: make(map[string]domain.Follow)}
}

func followKey(followerID, followingID string) string {
	return followerID + "|" + followingID
}

func (m *mockFollowRepo) Create(_ context.Context, follow domain.Follow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.follows[followKey(follow.FollowerID, follow.FollowingID)] = follow
	return nil
}

func (m *mockFollowRepo) Delete(_ context.Context, followerID, followingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := followKey(followerID, followingID)
	if _, ok := m.follows[key]; !ok {
		return false, nil
	}
	delete(m.follows, key)
	return true, nil
}

func (m *mockFollowRepo) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.follows[followKey(followerID, followingID)]
	return ok, nil
}

func (m *mockFollowRepo) ListFollowerIDs(_ context.Context, agentID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, f := range m.follows {
		if f.FollowingID == agentID {
			ids = append(ids, f.FollowerID)
		}
	}
	return ids, nil
}

func (m *mockFollowRepo) ListFollowingIDs(_ context.Context, agentID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, f := range m.follows {
		if f.FollowerID == agentID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids, nil
}

func (m *mockFollowRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.follows)), nil
}

// mockLikeRepo es un LikeRepository en memoria.
type mockLikeRepo struct {
	mu    sync.Mutex
	likes map[string]domain.Like
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[string]domain.Like)}
}

func (m *mockLikeRepo) Create(_ context.Context, like domain.Like) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes[followKey(like.AgentID, like.PostID)] = like
	return nil
}

func (m *mockLikeRepo) Delete(_ context.Context, agentID, postID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := followKey(agentID, postID)
	if _, ok := m.likes[key]; !ok {
		return false, nil
	}
	delete(m.likes, key)
	return true, nil
}

func (m *mockLikeRepo) Exists(_ context.Context, agentID, postID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.likes[followKey(agentID, postID)]
	return ok, nil
}

func (m *mockLikeRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.likes)), nil
}

// mockVerificationRepo es un VerificationRepository en memoria.
type mockVerificationRepo struct {
	mu       sync.Mutex
	requests map[string]domain.VerificationRequest
}

func newMockVerificationRepo() *mockVerificationRepo {
	return &mockVerificationRepo{requests: make(map[string]domain.VerificationRequest)}
}

func (m *mockVerificationRepo) Create(_ context.Context, req domain.VerificationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return nil
}

func (m *mockVerificationRepo) GetPendingByID(_ context.Context, id string) (domain.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok || req.Status != domain.VerificationPending {
		return domain.VerificationRequest{}, pgx.ErrNoRows
	}
	return req, nil
}

func (m *mockVerificationRepo) GetPendingByAgentID(_ context.Context, agentID string) (domain.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.AgentID == agentID && req.Status == domain.VerificationPending {
			return req, nil
		}
	}
	return domain.VerificationRequest{}, pgx.ErrNoRows
}

func (m *mockVerificationRepo) UpdateStatus(_ context.Context, id, status, rejectionReason string, reviewedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return pgx.ErrNoRows
	}
	req.Status = status
	req.RejectionReason = rejectionReason
	req.ReviewedAt = &reviewedAt
	m.requests[id] = req
	return nil
}
