package respond

import (
	"github.com/bnema/support-agent-cli/internal/classify"
	"github.com/bnema/support-agent-cli/internal/domain"
)

type CannedAnswer struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

// Catalog holds the scripted answers and knowledge-base templates.
type Catalog struct {
	EscalationReply string                     `mapstructure:"escalation_reply"`
	AuthAnswers     []CannedAnswer             `mapstructure:"auth_answers"`
	AuthFallback    string                     `mapstructure:"auth_fallback"`
	Templates       map[domain.Category]string `mapstructure:"templates"`
	// Clarification is a fmt template receiving the quoted query.
	Clarification     string   `mapstructure:"clarification"`
	HistoryPrefix     string   `mapstructure:"history_prefix"`
	HistorySuffix     string   `mapstructure:"history_suffix"`
	Stopwords         []string `mapstructure:"stopwords"`
	TemplateThreshold float64  `mapstructure:"template_threshold"`
	MatchThreshold    float64  `mapstructure:"match_threshold"`
	RelatedMinShared  int      `mapstructure:"related_min_shared"`
	RecentHistory     int      `mapstructure:"recent_history"`
}

const escalationReply = "I understand this is an important matter that requires specialized attention. " +
	"I'm escalating your query to our human support team who will review it and respond within 2 business hours. " +
	"You'll receive a notification once they've reviewed your case."

const authFallback = `I understand you're having an account or authentication issue. Here are some general steps that might help:

1. Try resetting your password using "Forgot Password?"
2. Clear your browser cache and cookies
3. Check your email for any account notifications
4. Contact our support team if the issue persists

Is there a specific authentication problem you're experiencing?`

const clarification = `Thank you for your question about "%s".

I'd be happy to help you with this. Could you please provide more details about:
• What you're trying to accomplish
• Any error messages you're seeing
• When this issue started

This will help me provide you with the most accurate assistance.`

func DefaultCatalog() Catalog {
	return Catalog{
		EscalationReply:   escalationReply,
		AuthAnswers:       defaultAuthAnswers(),
		AuthFallback:      authFallback,
		Templates:         defaultTemplates(),
		Clarification:     clarification,
		HistoryPrefix:     "I see you previously asked about similar topics. ",
		HistorySuffix:     "\n\nBased on your history, I can also help with any follow-up questions.",
		Stopwords:         []string{"the", "a", "an", "is", "how", "what", "when", "where", "can", "my", "i"},
		TemplateThreshold: 0.3,
		MatchThreshold:    0.5,
		RelatedMinShared:  2,
		RecentHistory:     3,
	}
}

func (c Catalog) withDefaults() Catalog {
	def := DefaultCatalog()
	if c.EscalationReply == "" {
		c.EscalationReply = def.EscalationReply
	}
	if len(c.AuthAnswers) == 0 {
		c.AuthAnswers = def.AuthAnswers
	}
	if c.AuthFallback == "" {
		c.AuthFallback = def.AuthFallback
	}
	if len(c.Templates) == 0 {
		c.Templates = def.Templates
	}
	if c.Clarification == "" {
		c.Clarification = def.Clarification
	}
	if c.HistoryPrefix == "" && c.HistorySuffix == "" {
		c.HistoryPrefix = def.HistoryPrefix
		c.HistorySuffix = def.HistorySuffix
	}
	if len(c.Stopwords) == 0 {
		c.Stopwords = def.Stopwords
	}
	if c.TemplateThreshold <= 0 {
		c.TemplateThreshold = def.TemplateThreshold
	}
	if c.MatchThreshold <= 0 {
		c.MatchThreshold = def.MatchThreshold
	}
	if c.RelatedMinShared <= 0 {
		c.RelatedMinShared = def.RelatedMinShared
	}
	if c.RecentHistory <= 0 {
		c.RecentHistory = def.RecentHistory
	}
	return c
}

func defaultTemplates() map[domain.Category]string {
	return map[domain.Category]string{
		classify.CategoryPasswordReset: `To reset your password:

1. Go to the login page
2. Click on "Forgot Password?" link
3. Enter your registered email address
4. Check your email for the password reset link
5. Click the link and create a new password
6. Your new password must be at least 8 characters with uppercase, lowercase, and numbers

The reset link expires in 24 hours. If you don't receive the email, please check your spam folder.`,
		classify.CategoryBilling: `For billing-related inquiries:

• View billing details: Account Settings > Billing & Payments
• Download invoices: Billing section > Invoice History
• Update payment method: Settings > Payment Methods
• View subscription plans: Account > Subscription

If you notice any incorrect charges, please provide the transaction ID and date for immediate assistance.`,
		classify.CategoryFeatures: `I can help you with our features! Here are some quick guides:

• Getting Started Guide
• Feature Tutorials
• Video Walkthroughs
• API Documentation

Which specific feature would you like to learn about?`,
		classify.CategoryAccount: `For account management:

• Edit Profile: Settings > Profile Information
• Security Settings: Settings > Security & Privacy
• Notification Preferences: Settings > Notifications
• Data Export: Settings > Privacy > Export Data
• Account Deletion: Settings > Privacy > Delete Account

What specific account setting would you like to modify?`,
		classify.CategoryTechnicalIssue: `I'll help you resolve this technical issue. Please provide:

1. Error message (if any)
2. What you were trying to do
3. Browser/device information
4. When the issue started

In the meantime, try these quick fixes:
• Clear browser cache and cookies
• Try a different browser
• Disable browser extensions
• Check your internet connection`,
	}
}

func defaultAuthAnswers() []CannedAnswer {
	return []CannedAnswer{
		{
			Question: "how do i reset my password",
			Answer: `To reset your password:

1. Visit our login page and click "Forgot Password?"
2. Enter your registered email address
3. Check your email for a password reset link (may take up to 5 minutes)
4. Click the link and create a new secure password
5. Your new password must contain at least 8 characters with uppercase, lowercase, and numbers

If you don't receive the email, check your spam folder or contact support for assistance.`,
		},
		{
			Question: "i forgot my password can you help",
			Answer: `I can definitely help you recover your password! Here's what to do:

1. Go to the login page and select "Forgot Password?"
2. Enter the email address associated with your account
3. You'll receive a password reset email within 5 minutes
4. Follow the secure link in the email to create a new password
5. Make sure your new password is strong and unique

If you're having trouble receiving the email, please check your spam folder first.`,
		},
		{
			Question: "my account is locked what should i do",
			Answer: `If your account is locked, here are the steps to unlock it:

1. Wait 15 minutes - temporary locks often resolve automatically
2. Try the "Forgot Password?" option to reset your credentials
3. Clear your browser cache and cookies, then try logging in again
4. If still locked, it may be due to multiple failed login attempts

For immediate assistance, contact our support team with your username or email address.`,
		},
		{
			Question: "how do i change my password",
			Answer: `To change your password while logged in:

1. Go to Account Settings → Security
2. Click on "Change Password"
3. Enter your current password
4. Create a new secure password (8+ characters, mixed case, numbers)
5. Confirm the new password
6. Click "Update Password"

You'll receive a confirmation email once the change is successful. For security, you'll be logged out of all devices.`,
		},
		{
			Question: "i can't log in to my account",
			Answer: `Let's troubleshoot your login issue:

1. Check your credentials: ensure you're using the correct email/username and password
2. Try password reset: use "Forgot Password?" if you're unsure about your password
3. Clear browser data: clear cache, cookies, and try a different browser
4. Check account status: your account might be temporarily locked
5. Verify email: make sure you've verified your email address

If none of these work, please contact support with your username or registered email.`,
		},
		{
			Question: "why am i getting invalid credentials error",
			Answer: `The "invalid credentials" error usually means:

1. Incorrect password: try using "Forgot Password?" to reset it
2. Wrong email/username: double-check you're using the right login credentials
3. Account not verified: check if you need to verify your email address
4. Caps Lock: ensure Caps Lock isn't affecting your password
5. Browser issues: clear cache/cookies or try a different browser

If you're certain your credentials are correct, your account may be locked. Contact support for assistance.`,
		},
		{
			Question: "how do i enable two-factor authentication",
			Answer: `To enable two-factor authentication (2FA):

1. Go to Account Settings → Security
2. Find "Two-Factor Authentication" section
3. Click "Enable 2FA"
4. Download an authenticator app
5. Scan the QR code with your authenticator app
6. Enter the 6-digit code from your app to verify
7. Save your backup codes in a secure location

2FA adds an extra layer of security to protect your account from unauthorized access.`,
		},
		{
			Question: "i lost my 2fa device how do i access my account",
			Answer: `If you lost your 2FA device, here's how to regain access:

1. Use backup codes: if you saved backup codes during 2FA setup, use one of those
2. Account recovery: contact our support team with your full name, email address, last known password and recent account activity
3. Alternative verification: we may ask for additional identity verification
4. Device replacement: once verified, we'll help you set up 2FA on a new device

For security reasons, this process may take 24-48 hours to complete.`,
		},
		{
			Question: "can i use my email instead of username to login",
			Answer: `Yes! You can log in using either:

1. Email address: enter your full email address in the username field
2. Username: use your chosen username if you prefer

Both methods work with the same password. If you're having trouble, try both your email and username, or use "Forgot Password?" if you're unsure about your password.`,
		},
		{
			Question: "my session keeps timing out why",
			Answer: `Session timeouts can occur for several reasons:

1. Inactivity: sessions automatically expire after 30 minutes of inactivity for security
2. Browser settings: check if your browser is set to clear cookies/data
3. Network issues: unstable connections can cause session interruptions
4. Multiple devices: logging in from another device may end your current session
5. Security settings: enhanced security settings may reduce session duration

Contact support if timeouts are unusually frequent.`,
		},
	}
}
