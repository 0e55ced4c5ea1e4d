package authstate

import "github.com/authfold/authfold/pkg/authapi"

// State is the read-only view of authentication derived from the cached
// session entry. It is recomputed from the entry and its fetch status;
// consumers never mutate it.
type State struct {
	Err             error
	Session         authapi.Session
	User            authapi.User
	IsAuthenticated bool
	IsLoading       bool
}

// derive computes a State from a session record and its fetch status.
// A failed session read is indistinguishable from "anonymous" except
// through Err.
func derive(rec authapi.SessionRecord, settled bool, err error) State {
	return State{
		Session:         rec.Session,
		User:            rec.User,
		IsAuthenticated: rec.Authenticated(),
		IsLoading:       !settled,
		Err:             err,
	}
}
