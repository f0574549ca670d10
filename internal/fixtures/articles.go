package fixtures

import "github.com/spec-kit/helpdesk-service/internal/domain"

// Articles returns the knowledge base seed.
func Articles() []domain.KnowledgeArticle {
	return []domain.KnowledgeArticle{
		{
			ID:    "kb-001",
			Title: "How to Connect to VPN",
			Content: `# How to Connect to VPN

## Prerequisites
- VPN client installed on your computer
- Valid company credentials

## Steps
1. Open the VPN client application
2. Enter your username and password
3. Click "Connect"
4. Wait for the connection to establish
5. You should see a "Connected" status

## Troubleshooting
- If connection fails, check your internet connection
- Ensure your password has not expired
- Contact IT if issues persist`,
			Category:  domain.CategoryNetwork,
			Tags:      []string{"vpn", "remote-work", "connection"},
			Views:     1250,
			Helpful:   892,
			CreatedAt: at("2025-06-15T10:00:00Z"),
		},
		{
			ID:    "kb-002",
			Title: "Resetting Your Password",
			Content: `# Resetting Your Password

## Self-Service Reset
1. Go to the password reset portal
2. Enter your email address
3. Answer your security questions
4. Create a new password following the policy
5. Confirm your new password

## Password Policy
- Minimum 12 characters
- At least one uppercase letter
- At least one number
- At least one special character
- Cannot reuse last 5 passwords`,
			Category:  domain.CategoryAccess,
			Tags:      []string{"password", "security", "login"},
			Views:     2340,
			Helpful:   1890,
			CreatedAt: at("2025-05-20T14:30:00Z"),
		},
		{
			ID:    "kb-003",
			Title: "Setting Up Email on Mobile Devices",
			Content: `# Setting Up Email on Mobile Devices

## For iPhone
1. Go to Settings > Mail
2. Tap "Add Account"
3. Select "Microsoft Exchange"
4. Enter your email and password
5. Accept any prompts for server configuration

## For Android
1. Open the Outlook app
2. Tap "Add Account"
3. Enter your email address
4. Follow the prompts to complete setup

## Troubleshooting
- Ensure you have a stable internet connection
- Check that your password is correct
- Enable "Allow less secure apps" if prompted`,
			Category:  domain.CategoryEmail,
			Tags:      []string{"email", "mobile", "outlook", "setup"},
			Views:     1876,
			Helpful:   1432,
			CreatedAt: at("2025-07-10T09:00:00Z"),
		},
		{
			ID:    "kb-004",
			Title: "Identifying Phishing Emails",
			Content: `# How to Identify Phishing Emails

## Warning Signs
- Urgent language demanding immediate action
- Generic greetings like "Dear Customer"
- Suspicious sender email addresses
- Requests for personal information or passwords
- Unexpected attachments or links

## What to Do
1. Do NOT click any links
2. Do NOT download attachments
3. Report the email to IT Security
4. Delete the email from your inbox

## Remember
IT will NEVER ask for your password via email!`,
			Category:  domain.CategorySecurity,
			Tags:      []string{"phishing", "security", "email", "scam"},
			Views:     3421,
			Helpful:   2987,
			CreatedAt: at("2025-04-05T11:00:00Z"),
		},
		{
			ID:    "kb-005",
			Title: "Requesting Software Installation",
			Content: `# Requesting Software Installation

## Process
1. Submit a ticket through the IT Help Desk
2. Include the software name and version needed
3. Provide business justification
4. Attach manager approval (if required)

## Standard Software
The following software can be installed immediately:
- Microsoft Office Suite
- Adobe Acrobat Reader
- Zoom
- Slack

## Non-Standard Software
Requires additional approval and may take 3-5 business days.`,
			Category:  domain.CategorySoftware,
			Tags:      []string{"software", "installation", "request"},
			Views:     987,
			Helpful:   765,
			CreatedAt: at("2025-08-01T16:00:00Z"),
		},
		{
			ID:    "kb-006",
			Title: "Connecting to Wireless Printers",
			Content: `# Connecting to Wireless Printers

## Finding Available Printers
1. Open Settings > Devices > Printers & Scanners
2. Click "Add a printer or scanner"
3. Wait for the list to populate
4. Select the printer you want to add

## Printer Naming Convention
- Format: FLOOR-LOCATION-TYPE
- Example: 3F-KITCHEN-HP

## Common Issues
- Ensure you are on the company network
- Check that the printer is powered on
- Restart the print spooler service if needed`,
			Category:  domain.CategoryHardware,
			Tags:      []string{"printer", "wireless", "setup"},
			Views:     654,
			Helpful:   521,
			CreatedAt: at("2025-09-12T13:30:00Z"),
		},
	}
}
