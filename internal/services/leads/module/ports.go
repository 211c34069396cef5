package module

import "leadscout/internal/services/leads/domain"

// Ports defines leads module ports exposed via the registry
type Ports struct {
	Ingestor domain.IngestorPort
	Reader   domain.ReaderPort
	Curator  domain.CuratorPort
}
