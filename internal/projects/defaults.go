package projects

import (
	"github.com/shopspring/decimal"

	"github.com/labfund/fundops/internal/model"
)

// DefaultRegistry returns the demo project registry written by `fundops init`.
func DefaultRegistry() []model.Project {
	return []model.Project{
		{ID: "P-2023-001", Name: "新型纳米材料研究", Manager: "张伟", Partner: "建设银行", Category: "纵向", Status: model.ProjectStatusActive, Budget: decimal.NewFromInt(1200000), StartYear: 2023},
		{ID: "P-2023-002", Name: "智能电网调度算法", Manager: "李娜", Partner: "国家电网", Category: "横向", Status: model.ProjectStatusActive, Budget: decimal.NewFromInt(800000), StartYear: 2023},
		{ID: "P-2024-003", Name: "肿瘤早筛生物标志物", Manager: "王芳", Partner: "招商银行", Category: "纵向", Status: model.ProjectStatusActive, Budget: decimal.NewFromInt(2500000), StartYear: 2024},
		{ID: "P-2024-004", Name: "黄河流域生态修复", Manager: "刘洋", Partner: "水利部", Category: "纵向", Status: model.ProjectStatusActive, Budget: decimal.NewFromInt(1500000), StartYear: 2024},
		{ID: "P-2024-005", Name: "工业机器人视觉检测", Manager: "陈杰", Partner: "工商银行", Category: "横向", Status: model.ProjectStatusSuspended, Budget: decimal.NewFromInt(600000), StartYear: 2024},
		{ID: "P-2025-006", Name: "量子点发光器件", Manager: "杨静", Partner: "中国银行", Category: "纵向", Status: model.ProjectStatusApplying, Budget: decimal.NewFromInt(900000), StartYear: 2025},
	}
}
