package rules

// Default returns the built-in rule table covering the stock category set.
func Default() *Table {
	categories := []CategoryRule{
		{
			Name:           "Food",
			HighPriority:   []string{"zomato", "swiggy", "dominos", "mcdonald", "kfc", "subway", "pizza hut", "burger king"},
			MediumPriority: []string{"dunzo", "bigbasket", "grofers", "grocery", "restaurant", "cafe", "dine", "eat"},
		},
		{
			Name:           "Travel",
			HighPriority:   []string{"uber", "ola", "rapido", "irctc", "redbus", "makemytrip", "goibibo"},
			MediumPriority: []string{"metro", "taxi", "cab", "bus", "train", "flight", "hotel", "booking"},
		},
		{
			Name:           "Shopping",
			HighPriority:   []string{"amazon", "flipkart", "myntra", "ajio", "nykaa", "meesho", "snapdeal"},
			MediumPriority: []string{"decathlon", "mall", "store", "shopping", "retail", "mart"},
		},
		{
			Name:           "Bills",
			HighPriority:   []string{"airtel", "jio", "bsnl", "vodafone", "tneb", "bescom", "torrent"},
			MediumPriority: []string{"electricity", "water", "gas", "internet", "mobile", "recharge", "bill"},
		},
		{
			Name:           "Subscriptions",
			// "disney" rather than "disney+": descriptions are matched after
			// normalization, which strips punctuation.
			HighPriority:   []string{"netflix", "youtube premium", "disney", "spotify", "hotstar", "prime video", "amazon prime"},
			MediumPriority: []string{"subscription", "monthly", "annual", "membership"},
		},
		{
			Name:           "Others",
			HighPriority:   []string{"hospital", "pharmacy", "medical", "insurance", "doctor"},
			MediumPriority: []string{"topup", "wallet", "donation", "misc", "miscellaneous"},
		},
	}

	subcategories := map[string]Subcategory{
		"zomato":    {Category: "Food", Subcategory: "Delivery"},
		"swiggy":    {Category: "Food", Subcategory: "Delivery"},
		"bigbasket": {Category: "Food", Subcategory: "Groceries"},
		"amazon":    {Category: "Shopping", Subcategory: "Online Shopping"},
		"flipkart":  {Category: "Shopping", Subcategory: "Online Shopping"},
		"netflix":   {Category: "Subscriptions", Subcategory: "Entertainment"},
		"spotify":   {Category: "Subscriptions", Subcategory: "Entertainment"},
		"uber":      {Category: "Travel", Subcategory: "Cab"},
		"ola":       {Category: "Travel", Subcategory: "Cab"},
		"tneb":      {Category: "Bills", Subcategory: "Electricity"},
		"airtel":    {Category: "Bills", Subcategory: "Mobile"},
	}

	return NewTable(categories, subcategories)
}
