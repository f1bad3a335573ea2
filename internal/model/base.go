package model

import (
	"time"
)

// BaseModel 不带软删除：课程树依赖级联物理删除，唯一序号约束也不能被已删除行占用
// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
