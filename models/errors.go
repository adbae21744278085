package models

import "errors"

// Shared domain errors used across services. Every error aborts its
// triggering operation wholly; handlers map these to HTTP statuses.
var (
	// authorization
	ErrSignatureExpired = errors.New("signature deadline has passed")
	ErrInvalidSigner    = errors.New("recovered signer does not hold the backend signer role")
	ErrInvalidSignature = errors.New("signature is invalid for this payload")

	// profiles
	ErrAlreadyRegistered = errors.New("account is already registered")
	ErrNotRegistered     = errors.New("account is not registered")

	// achievements
	ErrAlreadyHasAchievement = errors.New("achievement already claimed for this event")
	ErrAchievementNotFound   = errors.New("achievement not found")
	ErrInvalidTier           = errors.New("achievement tier must be between 1 and 5")

	// events
	ErrEventExists       = errors.New("event already exists")
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTimeWindow = errors.New("event start time must be before end time")
	ErrInvalidRewardTier = errors.New("reward tier must be between 0 and 5")
	ErrEventFull         = errors.New("event has reached max participants")

	// cosmetics
	ErrItemExists       = errors.New("cosmetic item already exists")
	ErrItemNotFound     = errors.New("cosmetic item not found")
	ErrInvalidCategory  = errors.New("invalid cosmetic category")
	ErrInvalidRarity    = errors.New("invalid cosmetic rarity")
	ErrMaxSupplyReached = errors.New("max supply reached for this item")
	ErrItemNotOwned     = errors.New("account does not own enough of this item")
	ErrItemNotEquipped  = errors.New("no item equipped in this slot")

	// marketplace
	ErrListingNotFound     = errors.New("listing not found")
	ErrListingNotActive    = errors.New("listing is not active")
	ErrNotSeller           = errors.New("only the seller can cancel this listing")
	ErrInvalidAmount       = errors.New("amount must be positive and within the listed quantity")
	ErrInvalidPrice        = errors.New("price per unit must be positive")
	ErrInsufficientPayment = errors.New("payment does not cover the total price")
	ErrTransferFailed      = errors.New("value transfer failed")
	ErrFeeTooHigh          = errors.New("platform fee exceeds the maximum")

	// access control
	ErrUnauthorized    = errors.New("caller does not hold the required role")
	ErrNotEventManager = errors.New("caller does not hold the event manager role")
	ErrUnknownRole     = errors.New("unknown role")
)
