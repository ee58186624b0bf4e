package mailer

import "fmt"

// 邮件正文模板
// 简单的内联 HTML，避免引入模板引擎

func welcomeBody(name string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Welcome to College Grievance Portal</h2>
  <p>Dear %s,</p>
  <p>Your account has been created successfully. You can now log in and submit
  grievances, track their status, and receive updates by email.</p>
  <p style="color: #7f8c8d; font-size: 12px;">This is an automated message, please do not reply.</p>
</div>`, name)
}

func passwordResetBody(otp string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Password Reset Request</h2>
  <p>Use the following one-time code to reset your password:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px; color: #2980b9;">%s</p>
  <p>The code expires in <strong>10 minutes</strong>. If you did not request a
  password reset, you can safely ignore this email.</p>
  <p style="color: #7f8c8d; font-size: 12px;">This is an automated message, please do not reply.</p>
</div>`, otp)
}

func submissionBody(name, grievanceID, title string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Grievance Submitted Successfully</h2>
  <p>Dear %s,</p>
  <p>Your grievance <strong>%q</strong> (ID: %s) has been received and is now
  <strong>Pending</strong> review. You will be notified when its status changes.</p>
  <p style="color: #7f8c8d; font-size: 12px;">This is an automated message, please do not reply.</p>
</div>`, name, title, grievanceID)
}

func statusUpdateBody(name, grievanceID, title, status, comments string) string {
	commentBlock := ""
	if comments != "" {
		commentBlock = fmt.Sprintf(`<p><strong>Comments:</strong> %s</p>`, comments)
	}
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Grievance Status Update</h2>
  <p>Dear %s,</p>
  <p>The status of your grievance <strong>%q</strong> (ID: %s) has been updated to
  <strong>%s</strong>.</p>
  %s
  <p style="color: #7f8c8d; font-size: 12px;">This is an automated message, please do not reply.</p>
</div>`, name, title, grievanceID, status, commentBlock)
}
