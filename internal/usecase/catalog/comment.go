package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
)

const maxCommentLen = 500

func validateComment(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", domain.Validationf("comment message is required")
	}
	if utf8.RuneCountInString(msg) > maxCommentLen {
		return "", domain.Validationf("comment message exceeds %d characters", maxCommentLen)
	}
	return msg, nil
}

// Comments lists a resource's comments, newest first.
func (s *Service) Comments(ctx context.Context, resourceID string) ([]resource.Comment, error) {
	if _, err := s.resources.ByID(ctx, resourceID); err != nil {
		return nil, err
	}
	return s.comments.ByResource(ctx, resourceID)
}

// CreateComment posts a comment as the actor. Any known actor may comment.
func (s *Service) CreateComment(ctx context.Context, actor domain.Actor, resourceID, message string) (*resource.Comment, error) {
	if _, err := s.resources.ByID(ctx, resourceID); err != nil {
		return nil, err
	}
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	msg, err := validateComment(message)
	if err != nil {
		return nil, err
	}

	c := &resource.Comment{
		ResourceID: resourceID,
		AuthorID:   actor.ID,
		Message:    msg,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateComment edits a comment. Only its author may edit it.
func (s *Service) UpdateComment(ctx context.Context, actor domain.Actor, resourceID, commentID, message string) (*resource.Comment, error) {
	if _, err := s.resources.ByID(ctx, resourceID); err != nil {
		return nil, err
	}
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.comments.ByID(ctx, resourceID, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != actor.ID {
		return nil, domain.ErrForbidden
	}
	msg, err := validateComment(message)
	if err != nil {
		return nil, err
	}

	c.Message = msg
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment. Allowed for the comment's author, the
// resource owner, and admins.
func (s *Service) DeleteComment(ctx context.Context, actor domain.Actor, resourceID, commentID string) error {
	res, err := s.resources.ByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if !actor.Known() {
		return domain.ErrUnauthorized
	}
	c, err := s.comments.ByID(ctx, resourceID, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != actor.ID && !actor.CanManage(res.OwnerID) {
		return domain.ErrForbidden
	}
	return s.comments.Delete(ctx, resourceID, commentID)
}
