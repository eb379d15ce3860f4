package gemini

import "strings"

func sitePrompt(url string) string {
	return strings.TrimSpace(`
You are a research assistant specialized in finding information about company board members and advisory boards.

Extract the board of directors and board of advisors from the following website: ` + url + `.
Focus on information found directly on the website's pages and linked resources. Only include individuals explicitly identified as board members or advisors. Do not include members of the leadership or management team unless they are also on the board or advisory board.
If the website has no clear board page, search for news articles, press releases, or blog posts on the website that mention board members or advisors.
Set status to "not_found" if no board members or advisors can be found after thorough searching.
For each member, record the source URL where the information was found.
`)
}

func recordsPrompt(url string) string {
	return strings.TrimSpace(`
You are a helpful assistant finding details about the board of directors and board of advisors of a given website.

Extract the board of directors and board of advisors from the following website: ` + url + `.
Only include individuals explicitly identified as board members or advisors, not leadership or management, unless they also sit on a board.
Do not include "Dr." in first names or "PhD"/"MD" in last names.

Return ONLY a JSON array. One object per member with these keys (leave a key's value as an empty string when unknown):
"Status", "Comments", "First Name", "Last Name", "Title", "Title Source", "Phone", "Phone Type", "Phone Source", "Email", "Email Source", "LinkedIn URL", "Biography", "Biography Source", "Designation", "Undergrad College", "Undergrad Year", "Postgrad College", "Postgrad Year", "Metro Area", "Mailing Street", "Mailing City", "Mailing State/Province", "Mailing Zip/Postal Code", "Mailing Country"

Set "Status" to "BOM Available" for each member found. If no board members or advisors can be found after thorough searching, return a single-element array whose only entry has "Status" set to "No board members found".
`)
}
