package interviewquiz

import "strings"

var topicCatalogue = []Topic{
	{ID: "programming", Name: "Programming Fundamentals", Details: "programming fundamentals, data types, control structures, functions, OOP concepts"},
	{ID: "javascript", Name: "JavaScript", Details: "JavaScript syntax, DOM manipulation, async programming, ES6+ features, frameworks"},
	{ID: "python", Name: "Python", Details: "Python syntax, data structures, libraries, frameworks like Django/Flask"},
	{ID: "java", Name: "Java", Details: "Java syntax, OOP, collections, multithreading, Spring framework"},
	{ID: "web-development", Name: "Web Development", Details: "HTML, CSS, JavaScript, responsive design, web APIs, frameworks"},
	{ID: "data-structures", Name: "Data Structures", Details: "arrays, linked lists, stacks, queues, trees, graphs, hash tables"},
	{ID: "algorithms", Name: "Algorithms", Details: "sorting, searching, dynamic programming, recursion, complexity analysis"},
	{ID: "system-design", Name: "System Design", Details: "scalability, load balancing, databases, caching, microservices"},
	{ID: "databases", Name: "Databases", Details: "SQL, NoSQL, database design, indexing, transactions, normalization"},
	{ID: "html5", Name: "HTML5", Details: "HTML5 semantics, document structure, forms, media elements"},
	{ID: "css", Name: "CSS", Details: "selectors, the box model, layout, flexbox, grid, responsive design"},
}

// AvailableTopics lists the topics offered to users
func AvailableTopics() []Topic {
	topics := make([]Topic, len(topicCatalogue))
	copy(topics, topicCatalogue)
	return topics
}

const generalTopicDetails = "general IT and programming concepts"

// TopicDetails returns the prompt hint for topic. Topics outside the catalogue get a general hint.
func TopicDetails(topic string) string {
	key := normalizeKey(topic)
	for _, t := range topicCatalogue {
		if t.ID == key {
			return t.Details
		}
	}
	return generalTopicDetails
}

// normalizeKey maps "Web Development" and "web-development" to the same key
func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
