package edubot

import "slices"

// Registry is the ordered collection of known sessions, most recent first.
// At most one session is active at a time.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	sessions []Session
}

// NewRegistry returns a registry holding sessions in the given order.
func NewRegistry(sessions []Session) *Registry {
	r := &Registry{}
	r.Replace(sessions)
	return r
}

// Replace discards all sessions and installs the given ones in order.
func (r *Registry) Replace(sessions []Session) {
	r.sessions = slices.Clone(sessions)
}

// Prepend inserts s at the front of the ordering.
func (r *Registry) Prepend(s Session) {
	r.sessions = slices.Insert(r.sessions, 0, s)
}

// Remove deletes the session with the given id and reports whether it was
// present.
func (r *Registry) Remove(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.sessions = slices.Delete(r.sessions, i, i+1)
	return true
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (Session, bool) {
	i := r.index(id)
	if i < 0 {
		return Session{}, false
	}
	return r.sessions[i], true
}

// First returns the session at the front of the ordering.
func (r *Registry) First() (Session, bool) {
	if len(r.sessions) == 0 {
		return Session{}, false
	}
	return r.sessions[0], true
}

// SetActive marks the session with the given id active and every other
// session inactive. An empty or unknown id leaves no session active.
func (r *Registry) SetActive(id string) {
	for i := range r.sessions {
		r.sessions[i].IsActive = id != "" && r.sessions[i].ID == id
	}
}

// SetTitle renames the session with the given id. The title is no longer
// considered a placeholder afterwards.
func (r *Registry) SetTitle(id, title string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.sessions[i].Title = title
	r.sessions[i].TitleIsDefault = false
	return true
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// Sessions returns a copy of the sessions in registry order.
func (r *Registry) Sessions() []Session {
	return slices.Clone(r.sessions)
}

func (r *Registry) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(r.sessions, func(s Session) bool { return s.ID == id })
}
