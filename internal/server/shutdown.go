package server

import "context"

// Shutdown releases server-held resources: the database pool and the Redis
// connection. Safe to call once after the HTTP listener has stopped.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}
