package leasing

import "errors"

var (
	ErrRequestNotFound   = errors.New("leasing request not found")
	ErrContractNotFound  = errors.New("leasing contract not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrInvalidTransition = errors.New("invalid leasing status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)
