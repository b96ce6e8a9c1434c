package project

import (
	"time"

	"github.com/justinnewbold/86d-game-sub000/internal/model"
)

// SaveSummary 存档概要信息（用于存档列表）
type SaveSummary struct {
	SaveID        string    `json:"saveId"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LastOpenedAt  time.Time `json:"lastOpenedAt"`
	HasData       bool      `json:"hasData"`
	LocationCount int       `json:"locationCount"`
	LatestWeek    int       `json:"latestWeek"` // 各门店中最大的已结算周
}

// SavesIndex 存档索引文件：data/saves.json
type SavesIndex struct {
	SchemaVersion    int           `json:"schemaVersion"`
	LastActiveSaveID string        `json:"lastActiveSaveId"`
	Items            []SaveSummary `json:"items"`
}

// SaveMeta 存档目录元信息：data/saves/{saveId}/meta.json
type SaveMeta struct {
	SchemaVersion int       `json:"schemaVersion"`
	SaveID        string    `json:"saveId"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CurrentSave 当前存档
type CurrentSave struct {
	Save    SaveSummary `json:"save"`
	HasData bool        `json:"hasData"`
}

// saveState 存档内容：data/saves/{saveId}/state.json
type saveState struct {
	SchemaVersion int               `json:"schemaVersion"`
	SaveID        string            `json:"saveId"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Locations     []*model.Location `json:"locations"`
}
