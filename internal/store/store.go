// Package store is the in-memory state container for campaigns and their
// tasks, members, labels, milestones and schedules.
//
// A Store is constructed explicitly and handed to whoever needs it; there is no
// package-level instance. Mutators are synchronous and only touch memory.
// Persisting to the backend (and reconciling on failure) is the caller's job;
// see Begin for the optimistic-update helper.
package store

import (
	"sort"
	"sync"

	"mops-cli/internal/filter"
	"mops-cli/internal/model"
	"mops-cli/internal/viewstate"
)

type Store struct {
	mu sync.RWMutex

	campaigns         []model.Campaign
	currentCampaignID string

	// Tasks are kept flat, keyed by id, with insertion order tracked separately.
	// Subtasks are derived from ParentTaskID on read.
	tasks     map[string]model.Task
	taskOrder []string

	members    collection[model.Member]
	labels     collection[model.Label]
	milestones collection[model.Milestone]
	schedules  collection[model.Schedule]

	campaignFilter filter.CampaignFilter
	campaignSort   filter.Sort
	taskFilter     filter.TaskFilter
	taskSort       filter.Sort

	views map[viewstate.Screen]viewstate.State

	listeners    map[int]func()
	nextListener int

	pending map[uint64]string
	nextTx  uint64
}

func New() *Store {
	return &Store{
		tasks:      map[string]model.Task{},
		members:    newCollection(func(m model.Member) string { return m.ID }),
		labels:     newCollection(func(l model.Label) string { return l.ID }),
		milestones: newCollection(func(m model.Milestone) string { return m.ID }),
		schedules:  newCollection(func(s model.Schedule) string { return s.ID }),
		views: map[viewstate.Screen]viewstate.State{
			viewstate.ScreenCampaigns: viewstate.New(viewstate.ScreenCampaigns),
			viewstate.ScreenCampaign:  viewstate.New(viewstate.ScreenCampaign),
		},
		listeners: map[int]func(){},
		pending:   map[uint64]string{},
	}
}

// Subscribe registers fn to run after every mutation. Listeners run
// synchronously on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// mutate runs fn under the write lock and then notifies listeners.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	var ls []func()
	if changed {
		ids := make([]int, 0, len(s.listeners))
		for id := range s.listeners {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			ls = append(ls, s.listeners[id])
		}
	}
	s.mu.Unlock()
	for _, l := range ls {
		l()
	}
	return changed
}

// View returns the UI state of a screen.
func (s *Store) View(screen viewstate.Screen) viewstate.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.views[screen]; ok {
		return v
	}
	return viewstate.New(screen)
}

// UpdateView applies a viewstate transition to a screen.
func (s *Store) UpdateView(screen viewstate.Screen, fn func(viewstate.State) viewstate.State) {
	s.mutate(func() bool {
		cur, ok := s.views[screen]
		if !ok {
			cur = viewstate.New(screen)
		}
		s.views[screen] = fn(cur)
		return true
	})
}

// Snapshot is a deep copy of everything the store owns.
type Snapshot struct {
	Campaigns         []model.Campaign
	CurrentCampaignID string
	Tasks             []model.Task
	Members           []model.Member
	Labels            []model.Label
	Milestones        []model.Milestone
	Schedules         []model.Schedule
	CampaignFilter    filter.CampaignFilter
	CampaignSort      filter.Sort
	TaskFilter        filter.TaskFilter
	TaskSort          filter.Sort
	Views             map[viewstate.Screen]viewstate.State
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make(map[viewstate.Screen]viewstate.State, len(s.views))
	for k, v := range s.views {
		views[k] = v
	}
	return Snapshot{
		Campaigns:         cloneCampaigns(s.campaigns),
		CurrentCampaignID: s.currentCampaignID,
		Tasks:             s.tasksLocked(),
		Members:           s.members.all(),
		Labels:            s.labels.all(),
		Milestones:        s.milestones.all(),
		Schedules:         s.schedules.all(),
		CampaignFilter:    s.campaignFilter,
		CampaignSort:      s.campaignSort,
		TaskFilter:        s.taskFilter,
		TaskSort:          s.taskSort,
		Views:             views,
	}
}

// SetCampaignFilter replaces the filter state and resets the campaigns screen to page 1.
func (s *Store) SetCampaignFilter(f filter.CampaignFilter, by filter.Sort) {
	s.mutate(func() bool {
		s.campaignFilter = f
		s.campaignSort = by
		s.views[viewstate.ScreenCampaigns] = s.views[viewstate.ScreenCampaigns].SetPage(1)
		return true
	})
}

func (s *Store) CampaignFilter() (filter.CampaignFilter, filter.Sort) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.campaignFilter, s.campaignSort
}

func (s *Store) SetTaskFilter(f filter.TaskFilter, by filter.Sort) {
	s.mutate(func() bool {
		s.taskFilter = f
		s.taskSort = by
		return true
	})
}

func (s *Store) TaskFilter() (filter.TaskFilter, filter.Sort) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskFilter, s.taskSort
}

// GetFilteredCampaigns projects the campaigns through the current filter state.
func (s *Store) GetFilteredCampaigns() []model.Campaign {
	s.mu.RLock()
	cs := cloneCampaigns(s.campaigns)
	f, by := s.campaignFilter, s.campaignSort
	s.mu.RUnlock()
	return filter.Campaigns(cs, f, by)
}

// GetFilteredTasks projects the tasks through the current filter state.
func (s *Store) GetFilteredTasks() []model.Task {
	s.mu.RLock()
	ts := s.tasksLocked()
	f, by := s.taskFilter, s.taskSort
	s.mu.RUnlock()
	return filter.Tasks(ts, f, by)
}
