package service

import (
	"context"
	"errors"

	"registrar/internal/offering"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Collaborator calls run under their own deadline and fail closed: an error
// or timeout is reported as unavailable, never read as "exists".

func (s *Service) requireStudent(ctx context.Context, studentID id.StudentID) error {
	cctx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	exists, err := s.students.Exists(cctx, studentID)
	if err != nil {
		return s.collaboratorFailure(ctx, cctx, "student", err)
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, "student not found")
	}
	return nil
}

func (s *Service) studentName(ctx context.Context, studentID id.StudentID) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	name, found, err := s.students.Name(cctx, studentID)
	if err != nil {
		return "", s.collaboratorFailure(ctx, cctx, "student", err)
	}
	if !found {
		return "", dErrors.New(dErrors.CodeNotFound, "student not found")
	}
	return name, nil
}

func (s *Service) lookupOffering(ctx context.Context, offeringID id.OfferingID) (*offering.Offering, error) {
	cctx, cancel := context.WithTimeout(ctx, s.collaboratorTimeout)
	defer cancel()

	off, err := s.offerings.GetOffering(cctx, offeringID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "offering not found")
	}
	if err != nil {
		return nil, s.collaboratorFailure(ctx, cctx, "offering", err)
	}
	return off, nil
}

func (s *Service) collaboratorFailure(ctx, cctx context.Context, collaborator string, err error) error {
	s.metrics.IncCollaboratorError(collaborator)
	s.logger.WarnContext(ctx, "collaborator lookup failed",
		"request_id", requestcontext.RequestID(ctx),
		"collaborator", collaborator,
		"error", err,
	)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, collaborator+" directory timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, collaborator+" directory unavailable")
}
