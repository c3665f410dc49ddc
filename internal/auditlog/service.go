package auditlog

import "log"

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Record writes one audit entry. Audit failures are logged and swallowed;
// they must never fail the action being audited.
func (s *Service) Record(userID uint, tenantID *uint, action, details, ip string) {
	entry := &AuditLog{
		UserID:    userID,
		TenantID:  tenantID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
	}
	if err := s.repo.Create(entry); err != nil {
		log.Printf("⚠️ Failed to write audit log (%s): %v", action, err)
	}
}

// List returns entries for the admin view.
func (s *Service) List(tenantID uint, action string, limit, offset int) ([]AuditLog, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(tenantID, action, limit, offset)
}
