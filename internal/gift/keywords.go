package gift

// Keyword tables. Each lookup returns a fresh slice so callers may append to it.

func ageKeywords(a AgeGroup) []string {
	switch a {
	case AgeKid:
		return []string{"children", "kids", "storybook", "picture book"}
	case AgeTeen:
		return []string{"young adult", "teen", "coming of age"}
	case AgeAdult:
		return []string{"bestseller", "popular", "award winning"}
	case AgeSenior:
		return []string{"biography", "history", "memoir"}
	default:
		return nil
	}
}

func relationshipKeywords(r Relationship) []string {
	switch r {
	case RelationshipPartner:
		return []string{"romance", "love", "relationships"}
	case RelationshipMom:
		return []string{"family", "cooking", "inspiration"}
	case RelationshipDad:
		return []string{"history", "sports", "leadership"}
	case RelationshipFriend:
		return []string{"humor", "travel", "hobbies"}
	case RelationshipCoworker:
		return []string{"productivity", "business", "self improvement"}
	case RelationshipChild:
		return []string{"children", "adventure", "fantasy"}
	default:
		return nil
	}
}

func budgetKeywords(b Budget) []string {
	switch b {
	case BudgetUnder25:
		return []string{"short reads", "paperback"}
	case Budget25To50:
		return []string{"gift edition", "illustrated"}
	case BudgetOver50:
		return []string{"collector", "hardcover", "boxed set"}
	default:
		return nil
	}
}

func personalityHints(p Personality) []string {
	switch p {
	case PersonalityPractical:
		return []string{"how to", "guide"}
	case PersonalitySentimental:
		return []string{"memoir", "letters", "family"}
	case PersonalityTrendy:
		return []string{"popular", "new", "bestseller"}
	case PersonalityFunny:
		return []string{"humor", "comedy"}
	default:
		return nil
	}
}

// baseKeywords concatenates age, relationship and budget keywords in that order.
func baseKeywords(p RecipientProfile) []string {
	base := ageKeywords(p.AgeGroup)
	base = append(base, relationshipKeywords(p.Relationship)...)
	base = append(base, budgetKeywords(p.Budget)...)
	return base
}
