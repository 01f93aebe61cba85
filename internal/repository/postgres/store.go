package postgres

import "github.com/dtroode/licensekeeper/database"

// Store groups one repository per table, all sharing db.
type Store struct {
	Users        *UserRepository
	Emails       *EmailRepository
	Groups       *GroupRepository
	GroupMembers *GroupMemberRepository
	Licenses     *LicenseRepository
	Slots        *SlotRepository
	Sessions     *SessionRepository
	Software     *SoftwareRepository
}

func NewStore(db database.DBTX) *Store {
	return &Store{
		Users:        NewUserRepository(db),
		Emails:       NewEmailRepository(db),
		Groups:       NewGroupRepository(db),
		GroupMembers: NewGroupMemberRepository(db),
		Licenses:     NewLicenseRepository(db),
		Slots:        NewSlotRepository(db),
		Sessions:     NewSessionRepository(db),
		Software:     NewSoftwareRepository(db),
	}
}
