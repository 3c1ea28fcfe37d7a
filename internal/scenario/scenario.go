package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Scenario 是四个常系数输入的一份快照（现价、股息率、无风险利率、波动率）。
type Scenario struct {
	Spot          float64 `yaml:"spot" json:"spot"`
	DividendYield float64 `yaml:"dividend_yield" json:"dividend_yield"`
	RiskFreeRate  float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	Volatility    float64 `yaml:"volatility" json:"volatility"`
}

// 文件边界的约束：spot 必须为正、σ 非负。注意这只是配置文件校验，
// 过程本身保持宽松语义，运行期直接重绑定的负值仍按原样传播。
const schemaJSON = `{
	"type": "object",
	"required": ["spot", "dividend_yield", "risk_free_rate", "volatility"],
	"properties": {
		"spot":           {"type": "number", "exclusiveMinimum": 0},
		"dividend_yield": {"type": "number"},
		"risk_free_rate": {"type": "number"},
		"volatility":     {"type": "number", "minimum": 0}
	},
	"additionalProperties": false
}`

var compiledSchema = jsonschema.MustCompileString("scenario.json", schemaJSON)

func (s Scenario) asMap() map[string]any {
	return map[string]any{
		"spot":           s.Spot,
		"dividend_yield": s.DividendYield,
		"risk_free_rate": s.RiskFreeRate,
		"volatility":     s.Volatility,
	}
}

func (s Scenario) validate() error {
	if err := compiledSchema.Validate(s.asMap()); err != nil {
		return fmt.Errorf("scenario 校验失败: %w", err)
	}
	return nil
}

// LoadFile 读取并校验 yaml 场景文件。
func LoadFile(path string) (Scenario, error) {
	if strings.TrimSpace(path) == "" {
		return Scenario{}, fmt.Errorf("scenario path 不能为空")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario file failed: %w", err)
	}
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario file failed: %w", err)
	}
	if err := s.validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// ApplyOverride 把 JSON 里出现的字段合并进快照（缺省字段保持不变），再整体校验。
// 请求体容忍多余字段，数值字段用 gjson 宽松提取。
func (s Scenario) ApplyOverride(raw []byte) (Scenario, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Scenario{}, fmt.Errorf("override 内容为空")
	}
	if !gjson.ValidBytes(raw) {
		return Scenario{}, fmt.Errorf("override 不是合法 JSON")
	}
	out := s
	fields := []struct {
		key    string
		target *float64
	}{
		{"spot", &out.Spot},
		{"dividend_yield", &out.DividendYield},
		{"risk_free_rate", &out.RiskFreeRate},
		{"volatility", &out.Volatility},
	}
	touched := false
	for _, f := range fields {
		res := gjson.GetBytes(raw, f.key)
		if !res.Exists() {
			continue
		}
		if res.Type != gjson.Number {
			return Scenario{}, fmt.Errorf("字段 %s 必须是数字", f.key)
		}
		*f.target = res.Float()
		touched = true
	}
	if !touched {
		return Scenario{}, fmt.Errorf("override 未包含任何已知字段")
	}
	if err := out.validate(); err != nil {
		return Scenario{}, err
	}
	return out, nil
}
