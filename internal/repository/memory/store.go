package memory

// Store groups one repository per record type.
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

func NewStore() *Store {
	return &Store{
		Users:        NewUserRepository(),
		Emails:       NewEmailRepository(),
		Groups:       NewGroupRepository(),
		GroupMembers: NewGroupMemberRepository(),
		Licenses:     NewLicenseRepository(),
		Slots:        NewSlotRepository(),
		Sessions:     NewSessionRepository(),
		Software:     NewSoftwareRepository(),
	}
}
