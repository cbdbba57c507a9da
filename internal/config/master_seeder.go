package config

import "tradenexus/internal/core/domain"

// Reference data is static. Each call returns a fresh copy so callers may mutate it.

// HsCodes returns the flat duty-rate table
func (s *Seeder) HsCodes() []domain.HsCode {
	return []domain.HsCode{
		{Code: "0901.21", Description: "Coffee, roasted: Not decaffeinated", DutyRate: "0%"},
		{Code: "8542.31", Description: "Electronic integrated circuits: Processors and controllers", DutyRate: "0%"},
		{Code: "6109.10", Description: "T-shirts, singlets and other vests, knitted or crocheted, of cotton", DutyRate: "16.5%"},
	}
}

// HsTree returns the Chapter > Heading > Subheading classification tree
func (s *Seeder) HsTree() []domain.HsNode {
	return []domain.HsNode{
		{
			Code:  "09",
			Label: "Coffee, Tea, Maté and Spices",
			Level: domain.HsChapter,
			Children: []domain.HsNode{
				{
					Code:  "0901",
					Label: "Coffee, whether or not roasted or decaffeinated; coffee husks and skins; coffee substitutes containing coffee in any proportion",
					Level: domain.HsHeading,
					Children: []domain.HsNode{
						subheading("0901.11", "Coffee, not roasted: Not decaffeinated",
							[]domain.DutyRate{{Country: "USA", Rate: "Free"}, {Country: "China", Rate: "8%"}, {Country: "EU", Rate: "Free"}},
							"Arabica Beans", "Robusta Beans", "Green Coffee"),
						subheading("0901.12", "Coffee, not roasted: Decaffeinated",
							[]domain.DutyRate{{Country: "USA", Rate: "Free"}, {Country: "China", Rate: "8%"}},
							"Decaf Green Beans"),
						subheading("0901.21", "Coffee, roasted: Not decaffeinated",
							[]domain.DutyRate{{Country: "USA", Rate: "Free"}, {Country: "China", Rate: "15%"}},
							"Espresso Roast", "Whole Bean Coffee"),
					},
				},
				{
					Code:  "0902",
					Label: "Tea, whether or not flavored",
					Level: domain.HsHeading,
					Children: []domain.HsNode{
						subheading("0902.10", "Green tea (not fermented) in immediate packings of a content not exceeding 3 kg",
							[]domain.DutyRate{{Country: "USA", Rate: "Free"}, {Country: "UK", Rate: "2%"}},
							"Matcha", "Sencha", "Tea Bags"),
					},
				},
			},
		},
		{
			Code:  "85",
			Label: "Electrical machinery and equipment and parts thereof; sound recorders and reproducers, television image and sound recorders and reproducers, and parts and accessories of such articles",
			Level: domain.HsChapter,
			Children: []domain.HsNode{
				{
					Code:  "8517",
					Label: "Telephone sets, including telephones for cellular networks or for other wireless networks; other apparatus for the transmission or reception of voice, images or other data",
					Level: domain.HsHeading,
					Children: []domain.HsNode{
						subheading("8517.13", "Smartphones",
							[]domain.DutyRate{
								{Country: "USA", Rate: "Free", Note: "Trade war tariffs may apply"},
								{Country: "India", Rate: "20%"},
								{Country: "EU", Rate: "Free"},
							},
							"iPhone", "Android Devices", "Mobile Handsets"),
					},
				},
				{
					Code:  "8542",
					Label: "Electronic integrated circuits",
					Level: domain.HsHeading,
					Children: []domain.HsNode{
						subheading("8542.31", "Processors and controllers",
							[]domain.DutyRate{{Country: "Global", Rate: "Free (ITA)"}},
							"CPU", "Microcontrollers", "SoC"),
					},
				},
			},
		},
	}
}

func subheading(code, label string, rates []domain.DutyRate, related ...string) domain.HsNode {
	return domain.HsNode{
		Code:            code,
		Label:           label,
		Level:           domain.HsSubheading,
		DutyRates:       rates,
		RelatedProducts: related,
	}
}

// CountryStats returns the country risk table
func (s *Seeder) CountryStats() []domain.CountryStats {
	return []domain.CountryStats{
		{Country: "China", RiskLevel: domain.RiskMedium, GDP: "$17.7T", TradeBalance: "+$676B", TopExport: "Electronics"},
		{Country: "USA", RiskLevel: domain.RiskLow, GDP: "$23.3T", TradeBalance: "-$948B", TopExport: "Refined Petroleum"},
		{Country: "Germany", RiskLevel: domain.RiskLow, GDP: "$4.2T", TradeBalance: "+$200B", TopExport: "Cars"},
		{Country: "Vietnam", RiskLevel: domain.RiskMedium, GDP: "$366B", TradeBalance: "+$4B", TopExport: "Broadcasting Equipment"},
		{Country: "India", RiskLevel: domain.RiskMedium, GDP: "$3.1T", TradeBalance: "-$100B", TopExport: "Petroleum Products"},
		{Country: "Brazil", RiskLevel: domain.RiskMedium, GDP: "$1.6T", TradeBalance: "+$60B", TopExport: "Soybeans"},
		{Country: "Japan", RiskLevel: domain.RiskLow, GDP: "$4.9T", TradeBalance: "+$20B", TopExport: "Motor Vehicles"},
		{Country: "UK", RiskLevel: domain.RiskLow, GDP: "$3.1T", TradeBalance: "-$180B", TopExport: "Machinery"},
	}
}
