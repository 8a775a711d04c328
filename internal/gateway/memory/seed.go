package memory

import (
	"time"

	"metrodoc/internal/model"
)

type seedAccount struct {
	user     model.User
	password string
}

var seedAccounts = []seedAccount{
	{user: model.User{ID: "1", Name: "Admin User", Email: "admin@metrodoc.ai", Role: "admin"}, password: "admin123"},
	{user: model.User{ID: "2", Name: "Demo User", Email: "demo@metrodoc.ai", Role: "user"}, password: "demo123"},
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedDocuments() []model.Document {
	return []model.Document{
		{
			ID:          "1",
			Title:       "Metro Safety Guidelines 2025",
			Description: "Comprehensive safety protocols and guidelines for metro rail operations",
			Department:  "Operations",
			Priority:    model.PriorityHigh,
			Tags:        []string{"safety", "guidelines", "operations", "protocols"},
			UploadDate:  at("2025-10-01T10:30:00Z"),
			FileType:    "PDF",
			ExtractedText: "Metro Safety Guidelines\n\nChapter 1: Introduction\nThis document outlines the safety protocols and procedures for metro rail operations...\n\n" +
				"Key Safety Requirements:\n1. All personnel must wear proper safety equipment\n2. Regular safety inspections are mandatory\n" +
				"3. Emergency procedures must be followed at all times\n4. Report any safety hazards immediately\n\nChapter 2: Emergency Procedures...",
		},
		{
			ID:          "2",
			Title:       "Maintenance Schedule Q4 2025",
			Description: "Scheduled maintenance activities for the fourth quarter",
			Department:  "Maintenance",
			Priority:    model.PriorityMedium,
			Tags:        []string{"maintenance", "schedule", "quarterly"},
			UploadDate:  at("2025-10-05T14:20:00Z"),
			FileType:    "PDF",
			ExtractedText: "Q4 2025 Maintenance Schedule\n\nOctober:\n- Track inspection: Week 1-2\n- Signal system maintenance: Week 3\n- Rolling stock servicing: Week 4\n\n" +
				"November:\n- Power supply systems check\n- Platform safety equipment testing\n- CCTV system maintenance",
		},
		{
			ID:          "3",
			Title:       "Employee Handbook",
			Description: "Complete guide for metro rail employees covering policies, benefits, and procedures",
			Department:  "Human Resources",
			Priority:    model.PriorityLow,
			Tags:        []string{"hr", "employees", "handbook", "policies"},
			UploadDate:  at("2025-09-15T09:00:00Z"),
			FileType:    "PDF",
			ExtractedText: "Employee Handbook\n\nWelcome to Metro Rail Corporation!\n\nThis handbook contains important information about:\n" +
				"- Company policies\n- Employee benefits\n- Work schedules\n- Code of conduct\n- Leave policies\n- Performance evaluation",
		},
		{
			ID:          "4",
			Title:       "Annual Budget Report 2025",
			Description: "Financial report and budget allocation for the year 2025",
			Department:  "Finance",
			Priority:    model.PriorityHigh,
			Tags:        []string{"finance", "budget", "annual", "report"},
			UploadDate:  at("2025-09-30T16:45:00Z"),
			FileType:    "PDF",
			ExtractedText: "Annual Budget Report 2025\n\nTotal Budget: $50 Million\n\nAllocations:\n- Operations: 40%\n- Maintenance: 25%\n" +
				"- Infrastructure: 20%\n- Administration: 10%\n- Contingency: 5%",
		},
		{
			ID:          "5",
			Title:       "Customer Service Guidelines",
			Description: "Best practices and procedures for customer service staff",
			Department:  "Customer Service",
			Priority:    model.PriorityNone,
			Tags:        []string{"customer-service", "guidelines", "procedures"},
			UploadDate:  at("2025-10-08T11:30:00Z"),
			FileType:    "PDF",
			ExtractedText: "Customer Service Guidelines\n\nCore Principles:\n1. Always greet customers with a smile\n2. Listen actively to customer concerns\n" +
				"3. Provide accurate information\n4. Resolve issues promptly\n5. Maintain professional demeanor",
		},
		{
			ID:          "6",
			Title:       "Emergency Response Protocol",
			Description: "Critical procedures for emergency situations and crisis management",
			Department:  "Operations",
			Priority:    model.PriorityHigh,
			Tags:        []string{"emergency", "crisis", "response", "protocol"},
			UploadDate:  at("2025-10-10T08:15:00Z"),
			FileType:    "PDF",
			ExtractedText: "Emergency Response Protocol\n\nCritical Response Procedures:\n1. Immediate evacuation protocols\n2. Communication with emergency services\n" +
				"3. Passenger safety management\n4. Media handling during emergencies\n\nLevel 1 Emergencies: Fire, Medical, Security\n" +
				"Level 2 Emergencies: Power outage, Equipment failure\nLevel 3 Emergencies: Weather-related disruptions",
		},
		{
			ID:          "7",
			Title:       "IT Security Policy",
			Description: "Information technology security guidelines and data protection policies",
			Department:  "IT",
			Priority:    model.PriorityMedium,
			Tags:        []string{"security", "it", "data-protection", "policy"},
			UploadDate:  at("2025-09-28T16:00:00Z"),
			FileType:    "PDF",
			ExtractedText: "IT Security Policy\n\nData Protection Guidelines:\n- Password requirements: minimum 12 characters\n- Two-factor authentication mandatory\n" +
				"- Regular security training required\n- Incident reporting procedures\n\nNetwork Security:\n- VPN access for remote work\n" +
				"- Regular security audits\n- Firewall configurations\n- Data backup protocols",
		},
		{
			ID:          "8",
			Title:       "Training Manual - New Employees",
			Description: "Comprehensive training guide for new metro rail employees",
			Department:  "Human Resources",
			Priority:    model.PriorityMedium,
			Tags:        []string{"training", "orientation", "new-employees", "manual"},
			UploadDate:  at("2025-09-20T10:45:00Z"),
			FileType:    "PDF",
			ExtractedText: "New Employee Training Manual\n\nWeek 1: Orientation and Safety\n- Company history and mission\n- Safety protocols and procedures\n" +
				"- Emergency evacuation routes\n- Equipment familiarization\n\nWeek 2: Operations Training\n- Daily operational procedures\n" +
				"- Customer service standards\n- Communication protocols\n- Performance expectations",
		},
		{
			ID:          "9",
			Title:       "Quarterly Performance Review",
			Description: "Q3 2025 performance metrics and operational statistics",
			Department:  "Management",
			Priority:    model.PriorityLow,
			Tags:        []string{"performance", "metrics", "quarterly", "review"},
			UploadDate:  at("2025-09-25T14:30:00Z"),
			FileType:    "PDF",
			ExtractedText: "Q3 2025 Performance Review\n\nKey Metrics:\n- On-time performance: 94.2%\n- Customer satisfaction: 4.3/5.0\n" +
				"- Safety incidents: 3 (down from 7 in Q2)\n- Revenue: $12.5M (5% increase)\n\nAreas for Improvement:\n" +
				"- Reduce average wait times\n- Enhance digital ticketing adoption\n- Improve station cleanliness scores",
		},
		{
			ID:          "10",
			Title:       "Environmental Impact Report",
			Description: "Annual environmental sustainability and impact assessment",
			Department:  "Environmental",
			Priority:    model.PriorityLow,
			Tags:        []string{"environment", "sustainability", "impact", "report"},
			UploadDate:  at("2025-09-12T11:20:00Z"),
			FileType:    "PDF",
			ExtractedText: "Environmental Impact Report 2025\n\nSustainability Initiatives:\n- 15% reduction in energy consumption\n" +
				"- Implementation of solar panels at 3 stations\n- LED lighting upgrade completed\n- Waste reduction program launched\n\n" +
				"Environmental Metrics:\n- Carbon footprint: 2,500 tons CO2 (down 8%)\n- Water usage: 125,000 gallons (down 12%)\n- Recycling rate: 67% (up from 58%)",
		},
		{
			ID:          "11",
			Title:       "Infrastructure Upgrade Plan",
			Description: "Long-term infrastructure development and modernization strategy",
			Department:  "Engineering",
			Priority:    model.PriorityHigh,
			Tags:        []string{"infrastructure", "upgrade", "modernization", "development"},
			UploadDate:  at("2025-10-02T09:00:00Z"),
			FileType:    "PDF",
			ExtractedText: "Infrastructure Upgrade Plan 2025-2030\n\nMajor Projects:\n- Platform extension at 5 key stations\n- Signal system modernization\n" +
				"- Track renewal program\n- Accessibility improvements\n\nBudget Allocation:\n- Signal systems: $15M\n- Track infrastructure: $22M\n" +
				"- Station improvements: $8M\n- Accessibility: $5M\n\nTimeline: 5-year phased implementation",
		},
		{
			ID:          "12",
			Title:       "Vendor Management Guidelines",
			Description: "Procedures for managing external vendors and service providers",
			Department:  "Procurement",
			Priority:    model.PriorityNone,
			Tags:        []string{"vendor", "procurement", "management", "guidelines"},
			UploadDate:  at("2025-09-18T13:45:00Z"),
			FileType:    "PDF",
			ExtractedText: "Vendor Management Guidelines\n\nVendor Selection Criteria:\n- Technical capabilities and experience\n" +
				"- Financial stability and references\n- Compliance with safety standards\n- Cost-effectiveness and value\n\n" +
				"Contract Management:\n- Regular performance reviews\n- Quality assurance processes\n- Payment terms and conditions\n- Dispute resolution procedures",
		},
	}
}

var seedSummaries = map[string]model.Summary{
	"1": {
		Summary: "This document provides comprehensive safety guidelines for metro rail operations. It covers essential safety protocols, equipment requirements, emergency procedures, and reporting mechanisms.",
		KeyPoints: []string{
			"All personnel must wear proper safety equipment",
			"Regular safety inspections are mandatory",
			"Emergency procedures must be followed at all times",
			"Immediate reporting of safety hazards is required",
			"Comprehensive training for all staff members",
		},
	},
	"2": {
		Summary: "The Q4 2025 maintenance schedule outlines planned maintenance activities across October, November, and December.",
		KeyPoints: []string{
			"Track inspection scheduled for October Week 1-2",
			"Signal system maintenance in Week 3",
			"Rolling stock servicing in Week 4",
			"Power supply systems check in November",
			"CCTV system maintenance included",
		},
	},
	"4": {
		Summary: "The annual budget report presents the financial allocation for 2025 with a total budget of $50 million.",
		KeyPoints: []string{
			"Total budget: $50 Million",
			"Operations receives largest allocation at 40%",
			"Maintenance allocated 25% of budget",
			"Infrastructure development: 20%",
			"5% contingency fund for emergencies",
		},
	},
	"6": {
		Summary: "Emergency response protocol defines critical procedures for managing crisis situations in the metro system.",
		KeyPoints: []string{
			"Three-tier emergency response system",
			"Immediate evacuation protocols for all scenarios",
			"Direct communication with emergency services",
			"Passenger safety management procedures",
			"Media handling during crisis situations",
		},
	},
}

func strPtr(s string) *string { return &s }

// seedNotifications places the fixtures relative to now: five inside the 72h window, three outside.
func seedNotifications(now time.Time) []model.Notification {
	h := time.Hour
	d := 24 * time.Hour
	return []model.Notification{
		{
			ID: "1", Type: model.TypeCompliance, Priority: model.NotificationHigh, Category: "compliance",
			Title:         "Safety Compliance Review Required",
			Message:       "Annual safety guidelines review deadline is approaching. Metro Safety Guidelines 2025 document requires compliance verification by October 15, 2025.",
			Timestamp:     now.Add(-6 * h),
			DocumentID:    strPtr("1"),
			DocumentTitle: strPtr("Metro Safety Guidelines 2025"),
		},
		{
			ID: "2", Type: model.TypeReminder, Priority: model.NotificationMedium, Category: "maintenance",
			Title:         "Maintenance Schedule Due",
			Message:       "Q4 2025 maintenance activities are scheduled to begin next week. Please review the maintenance schedule document and prepare necessary resources.",
			Timestamp:     now.Add(-12 * h),
			DocumentID:    strPtr("2"),
			DocumentTitle: strPtr("Maintenance Schedule Q4 2025"),
		},
		{
			ID: "3", Type: model.TypeDeadline, Priority: model.NotificationHigh, Category: "finance",
			Title:         "Budget Report Submission",
			Message:       "Annual budget report must be submitted to the board by October 18, 2025. Current budget allocation shows 95% utilization.",
			Timestamp:     now.Add(-1 * d),
			DocumentID:    strPtr("4"),
			DocumentTitle: strPtr("Annual Budget Report 2025"),
			IsRead:        true,
		},
		{
			ID: "4", Type: model.TypeAlert, Priority: model.NotificationMedium, Category: "hr",
			Title:         "Staff Training Update Required",
			Message:       "Employee handbook has been updated with new policies. All staff must complete training acknowledgment by October 20, 2025.",
			Timestamp:     now.Add(-2 * d),
			DocumentID:    strPtr("3"),
			DocumentTitle: strPtr("Employee Handbook"),
			IsRead:        true,
		},
		{
			ID: "5", Type: model.TypeInfo, Priority: model.NotificationLow, Category: "customer-service",
			Title:         "Customer Service Guidelines Updated",
			Message:       "New customer service protocols have been added to improve passenger experience. Review updated guidelines at your convenience.",
			Timestamp:     now.Add(-3*d + h),
			DocumentID:    strPtr("5"),
			DocumentTitle: strPtr("Customer Service Guidelines"),
		},
		{
			ID: "6", Type: model.TypeCompliance, Priority: model.NotificationMedium, Category: "security",
			Title:         "Security Audit Completed",
			Message:       "Monthly security audit has been completed. All systems are functioning within normal parameters.",
			Timestamp:     now.Add(-5 * d),
			DocumentID:    strPtr("6"),
			DocumentTitle: strPtr("Security Audit Report"),
			IsRead:        true,
		},
		{
			ID: "7", Type: model.TypeReminder, Priority: model.NotificationLow, Category: "system",
			Title:     "Document Archive Scheduled",
			Message:   "Quarterly document archiving process will begin next month. Ensure all important documents are properly tagged.",
			Timestamp: now.Add(-7 * d),
			IsRead:    true,
		},
		{
			ID: "8", Type: model.TypeDeadline, Priority: model.NotificationHigh, Category: "training",
			Title:         "Emergency Response Training Completed",
			Message:       "All staff have successfully completed emergency response training. Certificates are now available for download.",
			Timestamp:     now.Add(-10 * d),
			DocumentID:    strPtr("7"),
			DocumentTitle: strPtr("Emergency Response Training"),
			IsRead:        true,
		},
	}
}
