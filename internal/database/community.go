package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Community repository methods

func (r *Repository) ListGroups() ([]CommunityGroup, error) {
	rows, err := r.Db.db.Query(`
		SELECT g.id, g.name, g.description, g.category, g.image_url, g.created_at,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)
		FROM community_groups g
		ORDER BY 7 DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []CommunityGroup
	for rows.Next() {
		var g CommunityGroup
		var imageURL sql.NullString
		err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Category, &imageURL,
			&g.CreatedAt, &g.MemberCount)
		if err != nil {
			return nil, err
		}
		g.ImageURL = imageURL.String
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *Repository) GetGroup(groupID string) (*CommunityGroup, error) {
	var g CommunityGroup
	var imageURL sql.NullString
	err := r.Db.db.QueryRow(`
		SELECT g.id, g.name, g.description, g.category, g.image_url, g.created_at,
			(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)
		FROM community_groups g
		WHERE g.id = ?
	`, groupID).Scan(&g.ID, &g.Name, &g.Description, &g.Category, &imageURL,
		&g.CreatedAt, &g.MemberCount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("группа %s: %w", groupID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	g.ImageURL = imageURL.String
	return &g, nil
}

// JoinGroup добавляет участника; повторное вступление - no-op
func (r *Repository) JoinGroup(groupID, userID string, at time.Time) (bool, error) {
	res, err := r.Db.db.Exec(`
		INSERT OR IGNORE INTO group_members (group_id, user_id, joined_at)
		VALUES (?, ?, ?)
	`, groupID, userID, at.UTC())
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	return inserted == 1, err
}

func (r *Repository) IsMember(groupID, userID string) (bool, error) {
	var exists bool
	err := r.Db.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)
	`, groupID, userID).Scan(&exists)
	return exists, err
}

func (r *Repository) AddMessage(msg Message) error {
	_, err := r.Db.db.Exec(`
		INSERT INTO messages (id, group_id, user_id, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.GroupID, msg.UserID, msg.Content, msg.Timestamp.UTC())
	return err
}

func (r *Repository) GetMessages(groupID string, limit int) ([]Message, error) {
	rows, err := r.Db.db.Query(`
		SELECT id, group_id, user_id, content, timestamp
		FROM messages
		WHERE group_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *Repository) CountGroups() (int, error) {
	var count int
	err := r.Db.db.QueryRow(`SELECT COUNT(*) FROM community_groups`).Scan(&count)
	return count, err
}
