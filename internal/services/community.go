package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"mindgarden/internal/database"
	"mindgarden/internal/engine"
	"mindgarden/internal/metrics"
)

// ErrNotMember пользователь пишет в группу, в которой не состоит
var ErrNotMember = errors.New("пользователь не состоит в группе")

type CommunityService struct {
	repository *database.Repository

	now func() time.Time
}

func NewCommunityService(repo *database.Repository) *CommunityService {
	return &CommunityService{
		repository: repo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (cs *CommunityService) ListGroups() ([]database.CommunityGroup, error) {
	return cs.repository.ListGroups()
}

// JoinGroup вступление в группу; повторное вступление - no-op
func (cs *CommunityService) JoinGroup(userID, groupID string) (*database.CommunityGroup, bool, error) {
	if _, err := cs.repository.GetGroup(groupID); err != nil {
		return nil, false, err
	}
	if _, err := cs.repository.GetOrCreateUser(userID); err != nil {
		return nil, false, err
	}

	joined, err := cs.repository.JoinGroup(groupID, userID, cs.now())
	if err != nil {
		return nil, false, err
	}

	group, err := cs.repository.GetGroup(groupID)
	return group, joined, err
}

func (cs *CommunityService) GetMessages(groupID string, limit int) ([]database.Message, error) {
	if _, err := cs.repository.GetGroup(groupID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return cs.repository.GetMessages(groupID, limit)
}

type PostedMessage struct {
	Message      database.Message `json:"message"`
	TokenBalance int              `json:"token_balance"`
}

// PostMessage сообщение в группу с начислением токенов за участие
func (cs *CommunityService) PostMessage(userID, groupID, content string) (*PostedMessage, error) {
	if _, err := cs.repository.GetGroup(groupID); err != nil {
		return nil, err
	}

	member, err := cs.repository.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	msg := database.Message{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		Content:   content,
		Timestamp: cs.now(),
	}
	if err := cs.repository.AddMessage(msg); err != nil {
		return nil, err
	}

	user, err := cs.repository.AddTokens(userID, engine.CommunityTokens)
	if err != nil {
		return nil, err
	}
	metrics.TokensAwardedTotal.WithLabelValues("community").Add(engine.CommunityTokens)

	return &PostedMessage{Message: msg, TokenBalance: user.TokenBalance}, nil
}
