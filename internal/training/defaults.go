package training

import "github.com/terra-clan/readiness-engine/internal/models"

func resource(title, kind, description, skills string) models.TrainingResource {
	return models.TrainingResource{Title: title, Type: kind, Description: description, URL: "#", Skills: skills}
}

// Defaults returns the static recommendation table for a role.
// Every role, known or not, gets a non-empty table.
func Defaults(role string) models.Recommendations {
	switch models.NormalizeRole(role) {
	case "frontend":
		return models.Recommendations{
			Foundational: []models.TrainingResource{
				resource("React Fundamentals", "course", "Learn React basics", "React JavaScript"),
				resource("JavaScript ES6+", "tutorial", "Modern JavaScript", "JavaScript ES6"),
				resource("CSS Grid & Flexbox", "tutorial", "Layout techniques", "CSS layout"),
			},
			Practical: []models.TrainingResource{
				resource("React Portfolio Project", "project", "Build portfolio", "React project"),
			},
		}
	case "backend":
		return models.Recommendations{
			Foundational: []models.TrainingResource{
				resource("SQL Database Design", "course", "Database fundamentals", "SQL database"),
				resource("Node.js Development", "course", "Backend development", "Node.js backend"),
				resource("API Development", "tutorial", "REST API design", "API REST"),
			},
		}
	case "data_analyst":
		return models.Recommendations{
			Foundational: []models.TrainingResource{
				resource("Python for Data Analysis", "course", "Data analysis with Python", "Python data analysis"),
				resource("SQL Fundamentals", "tutorial", "Database querying", "SQL database"),
				resource("Data Visualization", "course", "Creating charts", "visualization charts"),
			},
		}
	default:
		return models.Recommendations{
			Foundational: []models.TrainingResource{
				resource("Full Stack Development", "course", "Complete web development", "fullstack development"),
				resource("Software Architecture", "tutorial", "System design", "architecture design"),
			},
		}
	}
}
