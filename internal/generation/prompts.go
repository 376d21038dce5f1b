package generation

const scenarioPrompt = `You are an expert in creating realistic job scenarios for students.
Based on the role '%s' and the provided context, generate a practical scenario that tests real-world skills.

Context: %s
Role: %s

Generate a scenario with:
1. Clear task description
2. Realistic requirements
3. Expected deliverables
4. Success criteria

Return as JSON with keys: task, requirements, deliverables, criteria`

const evaluationPrompt = `Evaluate the following student response based on these criteria:
- Clarity (0-25 points)
- Relevance (0-25 points)
- Correctness (0-25 points)
- Scalability (0-25 points)

Scenario:
Task: %s
Requirements: %v
Expected Deliverables: %v
Success Criteria: %v

Student Response: %s

Provide detailed feedback and scores for each criterion.
Return as JSON with keys: scores (clarity, relevance, correctness, scalability), feedback (same keys plus general), total_score`

const codeCriteria = `

Additional Code Evaluation Criteria:
- Code structure and organization
- Error handling
- Performance considerations
- Code documentation
`

const documentCriteria = `

Additional Document Evaluation Criteria:
- Structure and organization
- Supporting evidence
- Professional presentation
`

const gapPrompt = `Based on the evaluation results, identify specific skill gaps:

Evaluation:
Total Score: %d/100
Scores: %+v
Grade: %s

Response:
Response Type: %s
Content Length: %d characters
Words: %d
Lines: %d

Identify gaps in these categories:
- Technical skills
- Conceptual understanding
- Process knowledge

Return as JSON with keys: technical_gaps, conceptual_gaps, process_gaps`
