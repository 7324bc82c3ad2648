package service

import (
	"context"
	"errors"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

// Rejection reasons reported by the access guard.
const (
	RejectCredential     = "credential"
	RejectSelfChat       = "self_chat"
	RejectBlocked        = "blocked"
	RejectListing        = "listing"
	RejectPeer           = "peer"
	RejectNotParticipant = "not_participant"
)

// Rejection is a terminal access guard failure for one connection attempt.
type Rejection struct {
	Reason string
	Err    error
}

func (r *Rejection) Error() string {
	return r.Err.Error()
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Admission describes an accepted connection attempt.
type Admission struct {
	User    *domain.User
	Listing *domain.Listing
	PeerID  string
}

// GuardService authorizes a chat connection before it is upgraded.
type GuardService interface {
	Admit(ctx context.Context, token string, listingID int64, peerID string) (*Admission, error)
}

type guardService struct {
	auth        AuthService
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	blockRepo   repository.BlockRepository
	log         logger.Logger
}

func NewGuardService(auth AuthService, userRepo repository.UserRepository, listingRepo repository.ListingRepository, blockRepo repository.BlockRepository, log logger.Logger) GuardService {
	return &guardService{
		auth:        auth,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		blockRepo:   blockRepo,
		log:         log,
	}
}

func reject(reason string, err error) error {
	return &Rejection{Reason: reason, Err: err}
}

// Admit runs the checks in order: credential, self-chat, block relation in
// either direction, listing existence, peer existence, listing ownership.
// The first failure is returned as a *Rejection; store failures are
// returned unwrapped.
func (s *guardService) Admit(ctx context.Context, token string, listingID int64, peerID string) (*Admission, error) {
	if token == "" {
		return nil, reject(RejectCredential, apperrors.ErrUnauthorized)
	}
	user, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		if apperrors.IsClientError(err) {
			return nil, reject(RejectCredential, err)
		}
		return nil, err
	}

	if peerID == user.ID {
		return nil, reject(RejectSelfChat, apperrors.ErrSelfChat)
	}

	blocked, err := s.blockRepo.ExistsBetween(ctx, user.ID, peerID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, reject(RejectBlocked, apperrors.ErrBlocked)
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrListingNotFound) {
			return nil, reject(RejectListing, err)
		}
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, reject(RejectPeer, err)
		}
		return nil, err
	}

	if !listing.IsOwner(user.ID) && !listing.IsOwner(peerID) {
		return nil, reject(RejectNotParticipant, apperrors.ErrNotParticipant)
	}

	return &Admission{User: user, Listing: listing, PeerID: peerID}, nil
}
