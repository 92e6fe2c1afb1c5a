package session

import (
	"strings"
	"unicode"
)

// Topic is one entry of the subject taxonomy used for key topics.
type Topic string

const (
	TopicMathematics     Topic = "Mathematics"
	TopicPhysics         Topic = "Physics"
	TopicChemistry       Topic = "Chemistry"
	TopicBiology         Topic = "Biology"
	TopicScience         Topic = "Science"
	TopicComputerScience Topic = "Computer Science"
	TopicHistory         Topic = "History"
	TopicGeography       Topic = "Geography"
	TopicLiterature      Topic = "Literature"
	TopicLanguageArts    Topic = "Language Arts"
	TopicEconomics       Topic = "Economics"
	TopicArt             Topic = "Art"
	TopicMusic           Topic = "Music"
	TopicHealth          Topic = "Health"
)

// TopicClassifier tags free text with taxonomy topics.
type TopicClassifier interface {
	Classify(text string) []Topic
}

type topicKeywords struct {
	topic    Topic
	keywords []string
}

var defaultTopicKeywords = []topicKeywords{
	{TopicMathematics, []string{"math", "mathematics", "algebra", "geometry", "calculus", "equation", "equations",
		"fraction", "fractions", "trigonometry", "statistics", "probability", "derivative", "integral", "polynomial"}},
	{TopicPhysics, []string{"physics", "force", "velocity", "acceleration", "gravity", "momentum", "energy",
		"newton", "quantum", "electricity", "magnetism", "thermodynamics"}},
	{TopicChemistry, []string{"chemistry", "molecule", "molecules", "atom", "atoms", "reaction", "compound",
		"element", "periodic table", "acid", "base", "chemical"}},
	{TopicBiology, []string{"biology", "cell", "cells", "dna", "gene", "genetics", "evolution", "organism",
		"photosynthesis", "ecosystem", "mitosis", "protein"}},
	{TopicScience, []string{"science", "experiment", "hypothesis", "scientific method", "observation"}},
	{TopicComputerScience, []string{"programming", "algorithm", "algorithms", "code", "coding", "software",
		"computer science", "data structure", "python", "javascript", "database"}},
	{TopicHistory, []string{"history", "war", "revolution", "empire", "ancient", "civilization", "century",
		"medieval", "dynasty"}},
	{TopicGeography, []string{"geography", "continent", "country", "climate", "map", "river", "mountain",
		"population", "latitude", "longitude"}},
	{TopicLiterature, []string{"literature", "novel", "poem", "poetry", "author", "shakespeare", "story",
		"character", "plot", "theme"}},
	{TopicLanguageArts, []string{"grammar", "essay", "writing", "vocabulary", "spelling", "sentence",
		"paragraph", "punctuation", "reading comprehension"}},
	{TopicEconomics, []string{"economics", "economy", "market", "supply", "demand", "inflation", "gdp",
		"trade", "finance"}},
	{TopicArt, []string{"art", "painting", "drawing", "sculpture", "artist", "design"}},
	{TopicMusic, []string{"music", "melody", "rhythm", "harmony", "instrument", "song", "composer"}},
	{TopicHealth, []string{"health", "nutrition", "exercise", "disease", "medicine", "diet", "wellness"}},
}

// KeywordClassifier matches whole words and phrases case-insensitively.
type KeywordClassifier struct {
	table []topicKeywords
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{table: defaultTopicKeywords}
}

// Classify returns matching topics in taxonomy order.
func (c *KeywordClassifier) Classify(text string) []Topic {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return nil
	}
	normalized := " " + strings.Join(words, " ") + " "

	var topics []Topic
	for _, entry := range c.table {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, " "+kw+" ") {
				topics = append(topics, entry.topic)
				break
			}
		}
	}
	return topics
}
