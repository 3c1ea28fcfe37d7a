package model

import "gorm.io/datatypes"

type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusFailed  RunStatus = "failed"
)

// PricingRunModel 记录一次 Monte Carlo 估值：请求参数、提交时的场景快照与最终结果。
type PricingRunModel struct {
	ID     string    `gorm:"column:id;primaryKey" json:"id"`
	Status RunStatus `gorm:"column:status;index" json:"status"`

	OptionType string  `gorm:"column:option_type" json:"option_type"`
	Strike     float64 `gorm:"column:strike" json:"strike"`
	Maturity   float64 `gorm:"column:maturity" json:"maturity"`
	Paths      int     `gorm:"column:paths" json:"paths"`
	Steps      int     `gorm:"column:steps" json:"steps"`
	Seed       uint64  `gorm:"column:seed" json:"seed"`
	Antithetic bool    `gorm:"column:antithetic" json:"antithetic"`

	Request  datatypes.JSON `gorm:"column:request" json:"request"`
	Scenario datatypes.JSON `gorm:"column:scenario" json:"scenario"`

	Estimate      float64 `gorm:"column:estimate" json:"estimate"`
	StdError      float64 `gorm:"column:std_error" json:"std_error"`
	AnalyticPrice float64 `gorm:"column:analytic_price" json:"analytic_price"`
	ElapsedMS     int64   `gorm:"column:elapsed_ms" json:"elapsed_ms"`
	ErrorMsg      string  `gorm:"column:error_msg" json:"error_msg"`

	CreatedAtUnix int64 `gorm:"column:created_at" json:"created_at"`
	UpdatedAtUnix int64 `gorm:"column:updated_at" json:"updated_at"`
}

func (PricingRunModel) TableName() string { return "pricing_runs" }
