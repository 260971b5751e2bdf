package service

import (
	"fmt"

	"expensetracker/config"

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

// Enabled 邮件服务是否启用
func (s *EmailService) Enabled() bool {
	return s.cfg.Enabled
}

// SendWelcomeEmail 注册成功后发送欢迎邮件
func (s *EmailService) SendWelcomeEmail(toEmail, username string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用")
	}
	if toEmail == "" {
		return fmt.Errorf("收件人邮箱为空")
	}

	subject := "【记账系统】欢迎注册"
	body := s.generateWelcomeEmailBody(username)

	return s.sendEmail(toEmail, subject, body)
}

// generateWelcomeEmailBody 生成欢迎邮件内容
func (s *EmailService) generateWelcomeEmailBody(username string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .content { padding: 40px 30px; color: #333; line-height: 1.8; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>💰 记账系统</h1></div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>您的账号已注册成功。现在可以创建预算分类、给分类充值，并记录每一笔消费了。</p>
            <p>祝您记账愉快！</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© 记账系统 - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, username)
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
