package domain

// DecoyHash exposes the hash compared against for unknown usernames.
func (s *Service) DecoyHash() []byte { return s.decoy }
