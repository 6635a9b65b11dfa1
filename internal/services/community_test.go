package services

import (
	"errors"
	"testing"

	"mindgarden/internal/database"
)

func seedGroup(t *testing.T, cs *CommunityService) string {
	t.Helper()
	if err := cs.repository.SeedIfEmpty(); err != nil {
		t.Fatal(err)
	}
	groups, err := cs.ListGroups()
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) == 0 {
		t.Fatal("посев не создал групп")
	}
	return groups[0].ID
}

func TestJoinAndPostMessage(t *testing.T) {
	repo := newTestRepo(t)
	cs := NewCommunityService(repo)
	groupID := seedGroup(t, cs)

	group, joined, err := cs.JoinGroup("u1", groupID)
	if err != nil {
		t.Fatal(err)
	}
	if !joined {
		t.Fatal("первое вступление должно создавать членство")
	}
	if group.MemberCount != 1 {
		t.Fatalf("member_count = %d, want 1", group.MemberCount)
	}

	posted, err := cs.PostMessage("u1", groupID, "всем привет")
	if err != nil {
		t.Fatal(err)
	}
	if posted.Message.Content != "всем привет" {
		t.Fatalf("message: %+v", posted.Message)
	}
	if posted.TokenBalance != 2 {
		t.Fatalf("balance = %d, want 2 за сообщение", posted.TokenBalance)
	}

	messages, err := cs.GetMessages(groupID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Fatalf("сообщений: %d, want 1", len(messages))
	}
}

func TestPostMessageRequiresMembership(t *testing.T) {
	repo := newTestRepo(t)
	cs := NewCommunityService(repo)
	groupID := seedGroup(t, cs)

	if _, err := repo.GetOrCreateUser("outsider"); err != nil {
		t.Fatal(err)
	}

	_, err := cs.PostMessage("outsider", groupID, "привет")
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("err = %v, want ErrNotMember", err)
	}
}

func TestJoinUnknownGroup(t *testing.T) {
	repo := newTestRepo(t)
	cs := NewCommunityService(repo)

	_, _, err := cs.JoinGroup("u1", "ghost")
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRedeemTokens(t *testing.T) {
	repo := newTestRepo(t)
	rw := NewRewardService(repo)

	if _, err := repo.GetOrCreateUser("u1"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.AddTokens("u1", 20); err != nil {
		t.Fatal(err)
	}

	result, err := rw.Redeem("u1", 15, "фон растения")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.NewBalance != 5 {
		t.Fatalf("result: %+v", result)
	}

	// нехватка - обычный исход, не ошибка
	result, err = rw.Redeem("u1", 100, "тема приложения")
	if err != nil {
		t.Fatal(err)
	}
	if result.Success {
		t.Fatal("списание сверх баланса должно отклоняться")
	}
	if result.NewBalance != 5 {
		t.Fatalf("balance = %d, want 5", result.NewBalance)
	}

	balance, err := rw.GetBalance("u1")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 5 {
		t.Fatalf("GetBalance = %d, want 5", balance)
	}
}
