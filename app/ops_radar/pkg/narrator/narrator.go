// Package narrator 调用 LLM 为一次运行的指标和洞察撰写管理层摘要。
package narrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/config"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/logger"
	dm "github.com/iWorld-y/ops_radar/app/ops_radar/pkg/model"
	"github.com/iWorld-y/ops_radar/app/ops_radar/pkg/stats"
)

const maxRetries = 3

// ChatModel 摘要所需的最小模型接口，openai.ChatModel 满足该接口
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Narrative 管理层摘要
type Narrative struct {
	Headline string   `json:"headline"`
	Summary  string   `json:"summary"`
	Actions  []string `json:"actions"`
}

// Input 生成摘要所需的数据
type Input struct {
	Days     int
	KPIs     stats.KPIs
	Forecast stats.Forecast
	Insights []dm.Insight
}

// Narrator LLM 摘要生成器
type Narrator struct {
	chatModel ChatModel
	limiter   *rate.Limiter
	baseDelay time.Duration
}

// New 根据配置初始化 openai 兼容模型
func New(ctx context.Context, llm config.LLMConfig, conc config.ConcurrencyConfig) (*Narrator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: llm.BaseURL,
		APIKey:  llm.APIKey,
		Model:   llm.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewWithModel(chatModel, NewLimiter(conc)), nil
}

// NewWithModel 使用给定模型和限流器
func NewWithModel(cm ChatModel, limiter *rate.Limiter) *Narrator {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Narrator{chatModel: cm, limiter: limiter, baseDelay: 2 * time.Second}
}

// NewLimiter 按 RPM/QPS 创建限流器，RPM 未配置时不限流
func NewLimiter(c config.ConcurrencyConfig) *rate.Limiter {
	if c.RPM <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := c.QPS
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(c.RPM)/60.0), burst)
}

// Narrate 生成摘要，遇到 429 时指数退避重试
func (n *Narrator) Narrate(ctx context.Context, in Input) (*Narrative, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: "你是一个 JSON 生成器。请只输出 JSON 字符串。"},
		{Role: schema.User, Content: buildPrompt(in)},
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := n.chatModel.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) {
				lastErr = err
				if i < maxRetries {
					delay := n.baseDelay * time.Duration(1<<i)
					logger.Log.Warnf("LLM 限流，%s 后重试 (%d/%d)", delay, i+1, maxRetries)
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(delay):
					}
					continue
				}
			}
			return nil, err
		}

		var narrative Narrative
		if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &narrative); err != nil {
			lastErr = fmt.Errorf("json unmarshal: %w", err)
			continue
		}
		return &narrative, nil
	}
	return nil, fmt.Errorf("failed after retries: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "too many requests")
}

func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func buildPrompt(in Input) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "以下是最近 %d 天零售与物流运营的关键指标：\n", in.Days)
	fmt.Fprintf(&sb, "- 总营收: %.2f，订单数: %d，客单价: %.2f，满意度: %.2f\n",
		in.KPIs.Revenue.Total, in.KPIs.Revenue.TotalOrders, in.KPIs.Revenue.AvgOrder, in.KPIs.Revenue.Satisfaction)
	fmt.Fprintf(&sb, "- 库存价值: %.0f，低库存记录: %d，商品数: %d\n",
		in.KPIs.Inventory.TotalValue, in.KPIs.Inventory.LowStockCount, in.KPIs.Inventory.TotalProducts)
	fmt.Fprintf(&sb, "- 准时率: %.1f%%，平均配送时长: %.1f 小时，配送单数: %d\n",
		in.KPIs.Delivery.OnTimeRate, in.KPIs.Delivery.AvgTime, in.KPIs.Delivery.TotalDeliveries)
	fmt.Fprintf(&sb, "- 未来 30 天预测营收: %.0f，预测订单: %.0f\n", in.Forecast.PredictedRevenue, in.Forecast.PredictedOrders)

	sb.WriteString("\n规则引擎给出的洞察：\n")
	if len(in.Insights) == 0 {
		sb.WriteString("- 无\n")
	}
	for _, ins := range in.Insights {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", ins.Type, ins.Title, ins.Message)
	}

	sb.WriteString(`
你是一名运营总监。请根据以上数据撰写一份简短的管理层摘要。
请务必严格按照以下 JSON 格式返回，不要包含任何 markdown 标记：
{
	"headline": "一句话标题（20字以内）",
	"summary": "运营综述（100字左右）",
	"actions": ["行动建议1", "行动建议2", "行动建议3"]
}`)
	return sb.String()
}
