package service

import (
	"fmt"
	"sync"
	"time"

	"go-pos-backend/internal/repository"
)

const permissionCacheTTL = 5 * time.Minute

type cachedPerms struct {
	keys      map[string]struct{}
	expiresAt time.Time
}

// CacheStats exposes cache hit counters for the admin endpoint.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

type PermissionService interface {
	// GetEffectivePermissions resolves and caches the user's permission keys
	// for one business. businessID 0 means system scope only.
	GetEffectivePermissions(roleName string, userID, businessID uint) ([]string, error)
	HasPermission(roleName string, userID, businessID uint, key string) (bool, error)
	HasAnyPermission(roleName string, userID, businessID uint, keys ...string) (bool, error)
	HasAllPermissions(roleName string, userID, businessID uint, keys ...string) (bool, error)

	InvalidateUser(userID uint)
	InvalidateBusiness(businessID uint)
	InvalidateAll()
	Stats() CacheStats
}

type permissionService struct {
	repo repository.PermissionRepository

	mu     sync.Mutex
	cache  map[string]cachedPerms
	hits   int64
	misses int64
}

func NewPermissionService(repo repository.PermissionRepository) PermissionService {
	return &permissionService{
		repo:  repo,
		cache: make(map[string]cachedPerms),
	}
}

func cacheKey(userID, businessID uint) string {
	return fmt.Sprintf("%d:%d", userID, businessID)
}

func (s *permissionService) GetEffectivePermissions(roleName string, userID, businessID uint) ([]string, error) {
	set, err := s.effectiveSet(roleName, userID, businessID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *permissionService) effectiveSet(roleName string, userID, businessID uint) (map[string]struct{}, error) {
	key := cacheKey(userID, businessID)
	now := time.Now()

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && now.Before(entry.expiresAt) {
		s.hits++
		s.mu.Unlock()
		return entry.keys, nil
	}
	s.misses++
	s.mu.Unlock()

	perms, err := s.repo.GetEffectivePermissions(roleName, userID, businessID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}

	s.mu.Lock()
	s.cache[key] = cachedPerms{keys: set, expiresAt: now.Add(permissionCacheTTL)}
	s.mu.Unlock()
	return set, nil
}

func (s *permissionService) HasPermission(roleName string, userID, businessID uint, key string) (bool, error) {
	set, err := s.effectiveSet(roleName, userID, businessID)
	if err != nil {
		return false, err
	}
	_, ok := set[key]
	return ok, nil
}

func (s *permissionService) HasAnyPermission(roleName string, userID, businessID uint, keys ...string) (bool, error) {
	set, err := s.effectiveSet(roleName, userID, businessID)
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		if _, ok := set[key]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *permissionService) HasAllPermissions(roleName string, userID, businessID uint, keys ...string) (bool, error) {
	set, err := s.effectiveSet(roleName, userID, businessID)
	if err != nil {
		return false, err
	}
	for _, key := range keys {
		if _, ok := set[key]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// InvalidateUser drops every cached scope for one user. Call after role or
// position changes.
func (s *permissionService) InvalidateUser(userID uint) {
	prefix := fmt.Sprintf("%d:", userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.cache, key)
		}
	}
}

// InvalidateBusiness drops every cached entry scoped to one business. Call
// after preset or override changes.
func (s *permissionService) InvalidateBusiness(businessID uint) {
	suffix := fmt.Sprintf(":%d", businessID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			delete(s.cache, key)
		}
	}
}

// InvalidateAll empties the cache, used when the feature-action vocabulary
// itself changes.
func (s *permissionService) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedPerms)
}

func (s *permissionService) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CacheStats{Entries: len(s.cache), Hits: s.hits, Misses: s.misses}
}
