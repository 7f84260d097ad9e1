package service

import (
	"fmt"
	"html"
	"strings"

	"budgetly/config"
	"budgetly/scoring"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 是否已配置并启用邮件
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

const emailStyle = `
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .code-box { background: #eff6ff; border: 2px dashed #2563eb; border-radius: 12px; padding: 30px; text-align: center; margin: 30px 0; }
        .code { font-size: 36px; font-weight: bold; color: #1d4ed8; letter-spacing: 8px; font-family: 'Courier New', monospace; }
        .score { font-size: 48px; font-weight: bold; color: #1d4ed8; text-align: center; }
        table { width: 100%; border-collapse: collapse; }
        td, th { border-bottom: 1px solid #eee; padding: 8px; text-align: left; font-size: 14px; }
        .over { color: #dc2626; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }`

// wrapEmail 套用统一的邮件外框
func wrapEmail(content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>%s
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 Budgetly</h1>
        </div>
        <div class="content">
%s
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`, emailStyle, content)
}

// SendPasswordResetCode 发送密码重置验证码
func (s *EmailService) SendPasswordResetCode(toEmail, username, code string) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用，请配置 BUDGETLY_EMAIL_ENABLED=true")
	}
	return s.sendEmail(toEmail, "【Budgetly】密码重置验证码", s.generateResetCodeBody(username, code))
}

func (s *EmailService) generateResetCodeBody(username, code string) string {
	return wrapEmail(fmt.Sprintf(`            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>我们收到了您的密码重置请求，请使用以下验证码重置您的密码：</p>
            <div class="code-box">
                <span class="code">%s</span>
            </div>
            <div class="warning">
                <p>⚠️ 此验证码有效期为 <strong>10 分钟</strong>，请尽快完成密码重置。</p>
                <p>⚠️ 如果您没有请求重置密码，请忽略此邮件。</p>
            </div>`, html.EscapeString(username), code))
}

// SendCycleSummary 发送预算周期总结邮件
func (s *EmailService) SendCycleSummary(toEmail, username string, o *HealthOverview) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用")
	}
	subject := fmt.Sprintf("【Budgetly】%s 至 %s 预算周期总结",
		o.CycleStart.Format("2006-01-02"), o.CycleEnd.Format("2006-01-02"))
	return s.sendEmail(toEmail, subject, s.generateCycleSummaryBody(username, o))
}

func (s *EmailService) generateCycleSummaryBody(username string, o *HealthOverview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "            <p>尊敬的 <strong>%s</strong>，您好！以下是本周期（%s 至 %s）的财务总结：</p>\n",
		html.EscapeString(username), o.CycleStart.Format("2006-01-02"), o.CycleEnd.Format("2006-01-02"))

	if o.Score.HealthScore == nil {
		b.WriteString("            <p>本周期记录的交易较少，暂无健康评分。多记几笔账就能看到评分啦。</p>\n")
	} else {
		fmt.Fprintf(&b, "            <p class=\"score\">%d</p>\n", *o.Score.HealthScore)
		fmt.Fprintf(&b, "            <p>储蓄分 %d，预算分 %d</p>\n", o.Score.SavingsScore, o.Score.BudgetingScore)
	}
	fmt.Fprintf(&b, "            <p>收入 %s %.2f，支出 %s %.2f</p>\n", o.Currency, o.Score.Income, o.Currency, o.Score.Expenses)

	if len(o.Budget) > 0 {
		b.WriteString("            <table>\n                <tr><th>分类</th><th>预算</th><th>支出</th></tr>\n")
		for _, row := range o.Budget {
			class := ""
			if scoring.IsOverBudget(row, o.CarryoverEnabled) {
				class = ` class="over"`
			}
			fmt.Fprintf(&b, "                <tr%s><td>%s</td><td>%.2f</td><td>%.2f</td></tr>\n",
				class, html.EscapeString(row.Name), row.Allocated, row.Spent)
		}
		b.WriteString("            </table>\n")
	}
	return wrapEmail(b.String())
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return fmt.Errorf("邮件服务未启用")
	}
	return s.sendEmail(toEmail, "【Budgetly】邮件配置测试", wrapEmail(`            <h2>✅ 邮件配置成功</h2>
            <p>如果您收到这封邮件，说明邮件服务配置正确。</p>`))
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
