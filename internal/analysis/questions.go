package analysis

// Question is one fixed analytical SQL statement. All questions are
// read-only and take no parameters.
type Question struct {
	Number int
	Title  string
	SQL    string
}

// Questions returns the ten analysis questions in execution order.
func Questions() []Question {
	return []Question{
		{
			Number: 1,
			Title:  "Find the total number of crimes recorded",
			SQL: `SELECT COUNT(*) AS TOTAL_CRIMES
FROM CHICAGO_CRIME_DATA`,
		},
		{
			Number: 2,
			Title:  "Community areas with per capita income < $11,000",
			SQL: `SELECT COMMUNITY_AREA_NUMBER, COMMUNITY_AREA_NAME, PER_CAPITA_INCOME
FROM CENSUS_DATA
WHERE PER_CAPITA_INCOME < 11000
ORDER BY PER_CAPITA_INCOME DESC`,
		},
		{
			Number: 3,
			Title:  "Crime case numbers involving minors",
			SQL: `SELECT DISTINCT CASE_NUMBER
FROM CHICAGO_CRIME_DATA
WHERE DESCRIPTION LIKE '%MINOR%'
ORDER BY CASE_NUMBER`,
		},
		{
			Number: 4,
			Title:  "Kidnapping crimes involving a child",
			SQL: `SELECT CASE_NUMBER, ID, DESCRIPTION
FROM CHICAGO_CRIME_DATA
WHERE PRIMARY_TYPE = 'KIDNAPPING'
AND DESCRIPTION LIKE '%CHILD%'
ORDER BY CASE_NUMBER`,
		},
		{
			Number: 5,
			Title:  "Types of crimes recorded at schools",
			SQL: `SELECT DISTINCT PRIMARY_TYPE
FROM CHICAGO_CRIME_DATA
WHERE LOCATION_DESCRIPTION LIKE '%SCHOOL%'
ORDER BY PRIMARY_TYPE`,
		},
		{
			Number: 6,
			Title:  "School types with average safety scores",
			SQL: `SELECT SCHOOL_TYPE, AVG(SAFETY_SCORE) AS AVG_SAFETY_SCORE
FROM CHICAGO_PUBLIC_SCHOOLS
WHERE SAFETY_SCORE IS NOT NULL
GROUP BY SCHOOL_TYPE
ORDER BY AVG_SAFETY_SCORE DESC`,
		},
		{
			Number: 7,
			Title:  "Top 5 community areas with highest poverty rate",
			SQL: `SELECT COMMUNITY_AREA_NUMBER, COMMUNITY_AREA_NAME, PERCENT_HOUSEHOLDS_BELOW_POVERTY
FROM CENSUS_DATA
ORDER BY PERCENT_HOUSEHOLDS_BELOW_POVERTY DESC
LIMIT 5`,
		},
		{
			Number: 8,
			Title:  "Most crime-prone community area",
			SQL: `SELECT COMMUNITY_AREA_NUMBER, COUNT(*) AS CRIME_COUNT
FROM CHICAGO_CRIME_DATA
WHERE COMMUNITY_AREA_NUMBER IS NOT NULL
GROUP BY COMMUNITY_AREA_NUMBER
ORDER BY CRIME_COUNT DESC
LIMIT 1`,
		},
		{
			Number: 9,
			Title:  "Community area with highest hardship index (subquery)",
			SQL: `SELECT COMMUNITY_AREA_NAME
FROM CENSUS_DATA
WHERE HARDSHIP_INDEX = (
    SELECT MAX(HARDSHIP_INDEX)
    FROM CENSUS_DATA
)`,
		},
		{
			Number: 10,
			Title:  "Community area with most crimes (subquery)",
			SQL: `SELECT COMMUNITY_AREA_NAME
FROM CENSUS_DATA
WHERE COMMUNITY_AREA_NUMBER = (
    SELECT COMMUNITY_AREA_NUMBER
    FROM CHICAGO_CRIME_DATA
    WHERE COMMUNITY_AREA_NUMBER IS NOT NULL
    GROUP BY COMMUNITY_AREA_NUMBER
    ORDER BY COUNT(*) DESC
    LIMIT 1
)`,
		},
	}
}
