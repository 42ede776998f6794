package models

// CategoryRank 分类排行（按书签数）
type CategoryRank struct {
	ID             uint   `json:"id"`
	DisplayName    string `json:"display_name"`
	BookmarksCount int64  `json:"bookmarks_count"`
}

// UserRank 用户排行（按书签数）
type UserRank struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	BookmarksCount int64  `json:"bookmarks_count"`
}
