// Package mocks provides testify mocks of the model store interfaces.
package mocks

import "github.com/dtroode/licensekeeper/internal/model"

var (
	_ model.UserStore  = (*UserStore)(nil)
	_ model.EmailStore = (*EmailStore)(nil)
	_ model.SlotStore  = (*SlotStore)(nil)
)
