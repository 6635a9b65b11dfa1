package services

import (
	"mindgarden/internal/database"
	"mindgarden/internal/logging"
)

type RewardService struct {
	repository *database.Repository
}

func NewRewardService(repo *database.Repository) *RewardService {
	return &RewardService{repository: repo}
}

func (rw *RewardService) GetBalance(userID string) (int, error) {
	user, err := rw.repository.GetUser(userID)
	if err != nil {
		return 0, err
	}
	return user.TokenBalance, nil
}

type RedeemResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	NewBalance int    `json:"new_balance"`
}

// Redeem списывает токены за награду. Нехватка баланса - обычный исход
// с success=false, а не ошибка.
func (rw *RewardService) Redeem(userID string, amount int, reward string) (*RedeemResult, error) {
	balance, ok, err := rw.repository.SpendTokens(userID, amount)
	if err != nil {
		return nil, err
	}

	if !ok {
		return &RedeemResult{
			Success:    false,
			Message:    "Insufficient token balance",
			NewBalance: balance,
		}, nil
	}

	logging.Info().Str("user", userID).Int("amount", amount).Str("reward", reward).
		Msg("🎁 Токены обменяны на награду")

	return &RedeemResult{
		Success:    true,
		Message:    "Tokens redeemed",
		NewBalance: balance,
	}, nil
}
