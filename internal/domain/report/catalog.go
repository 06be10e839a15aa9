package report

// IdentityColumn is the person-name column shared by the faculty entities
const IdentityColumn = "faculty_name"

// DOILinkPrefix resolves a DOI into a browsable link
const DOILinkPrefix = "https://doi.org/"

func col(key, label string, kind ColumnKind) ColumnSpec {
	return ColumnSpec{Key: key, Label: label, Kind: kind}
}

func plainCol(key, label string) ColumnSpec { return col(key, label, KindPlain) }
func dateCol(key, label string) ColumnSpec  { return col(key, label, KindDate) }
func yearCol(key, label string) ColumnSpec  { return col(key, label, KindYear) }

func facultyName() ColumnSpec { return plainCol(IdentityColumn, "Faculty Name") }

func personEntity(id, name string, group Group, cols ...ColumnSpec) *EntitySchema {
	return &EntitySchema{
		ID:          id,
		DisplayName: name,
		Group:       group,
		Columns:     append([]ColumnSpec{facultyName()}, cols...),
		IdentityKey: IdentityColumn,
	}
}

// Catalog returns fresh schemas for every faculty entity, in menu order
func Catalog() []*EntitySchema {
	personal := personEntity("fac_personal", "Personal Details", GroupPersonal,
		plainCol("employee_id", "Employee ID"),
		plainCol("qualification", "Qualification"),
		plainCol("department", "Department"),
		plainCol("photo", "Photo"),
		plainCol("title", "Title"),
		plainCol("emailId", "Email ID"),
		plainCol("contactNo", "Contact No"),
		plainCol("alternateContactNo", "Alternate Contact No"),
		plainCol("emergencyContactNo", "Emergency Contact No"),
		plainCol("adharNo", "Aadhar No"),
		plainCol("panNo", "PAN No"),
		dateCol("dob", "Date of Birth"),
		plainCol("gender", "Gender"),
		plainCol("nationality", "Nationality"),
		plainCol("firstAddressLine", "Permanent Address"),
		plainCol("correspondenceAddressLine", "Correspondence Address"),
		plainCol("religion", "Religion"),
		plainCol("caste", "Caste"),
		plainCol("category", "Category"),
		plainCol("motherTongue", "Mother Tongue"),
		plainCol("speciallyChallenged", "Specially Challenged"),
		plainCol("remarks", "Remarks"),
		plainCol("languages", "Languages Known"),
		plainCol("bankName", "Bank Name"),
		plainCol("accountNo", "Account No"),
		plainCol("accountName", "Account Name"),
		plainCol("accountType", "Account Type"),
		plainCol("branch", "Bank Branch"),
		plainCol("ifsc", "IFSC Code"),
		plainCol("pfNumber", "PF Number"),
		plainCol("uanNumber", "UAN Number"),
		plainCol("pensionNumber", "Pension Number"),
		plainCol("motherName", "Mother Name"),
		plainCol("fatherName", "Father Name"),
		plainCol("spouseName", "Spouse Name"),
		plainCol("children", "Children"),
		dateCol("dateOfJoiningDrait", "Date of Joining"),
		plainCol("designation", "Designation"),
		col("aided", "Aided", KindBoolean),
	)
	personal.DefaultColumns = []string{
		IdentityColumn, "qualification", "emailId", "contactNo", "firstAddressLine", "designation", "aided",
	}

	edu := personEntity("fac_edu", "Education", GroupEducation,
		plainCol("Program", "Program"),
		plainCol("schoolCollege", "School / College"),
		plainCol("specialization", "Specialization"),
		plainCol("mediumOfInstruction", "Medium of Instruction"),
		plainCol("passClass", "Pass Class"),
		yearCol("yearOfAward", "Year of Award"),
	)
	edu.FacetKey = "Program"

	conference := personEntity("fac_conferenceAndJournal", "", GroupResearch,
		plainCol("title", "Title"),
		plainCol("typeOfPublication", "Type of Publication"),
		ColumnSpec{Key: "doi", Label: "DOI", Kind: KindPlain, LinkPrefix: DOILinkPrefix},
		plainCol("issn", "ISSN"),
		yearCol("yearOfPublication", "Year of Publication"),
		col("impactFactor", "Impact Factor", KindNumeric),
		plainCol("volume", "Volume"),
		plainCol("pages", "Pages"),
	)

	return []*EntitySchema{
		personEntity("fac_outreach", "Outreach Activity", GroupAcademics,
			plainCol("activity", "Activity"),
			plainCol("role", "Role"),
			dateCol("fromDate", "From Date"),
			dateCol("toDate", "To Date"),
			plainCol("place", "Place"),
		),
		personEntity("fac_awards", "Awards and Recognition", GroupAcademics,
			plainCol("recognitionorawardReceived", "Recognition / Award Received"),
			plainCol("recognitionorawardFrom", "Recognition / Award From"),
			dateCol("recognitionorawardDate", "Recognition / Award Date"),
		),
		personEntity("fac_respon", "Additional Responsibilities", GroupAcademics,
			plainCol("level", "Level"),
			dateCol("fromDate", "From Date"),
			dateCol("toDate", "To Date"),
			plainCol("responsibility", "Responsibility"),
		),
		personEntity("fac_industry", "Industrial Experience", GroupAcademics,
			plainCol("organization", "Organization"),
			plainCol("designation", "Designation"),
			dateCol("fromDate", "From Date"),
			dateCol("toDate", "To Date"),
		),
		personEntity("fac_teach", "Teaching Experience", GroupAcademics,
			plainCol("instituteName", "Institute Name"),
			dateCol("fromDate", "From Date"),
			dateCol("toDate", "To Date"),
			plainCol("Designation", "Designation"),
			plainCol("departmentName", "Department Name"),
		),
		personEntity("fac_research", "", GroupResearch,
			plainCol("orcidId", "ORCID ID"),
			plainCol("googleScholarId", "Google Scholar ID"),
			plainCol("scopusId", "Scopus ID"),
			plainCol("publonsId", "Publons ID"),
			plainCol("researchId", "Research ID"),
		),
		personEntity("fac_bookPublication", "", GroupResearch,
			plainCol("title", "Title"),
			plainCol("publicationType", "Publication Type"),
			plainCol("issn", "ISSN / ISBN"),
			plainCol("publisher", "Publisher"),
			col("impactFactor", "Impact Factor", KindNumeric),
			yearCol("yearOfPublish", "Year of Publish"),
			plainCol("authors", "Authors"),
		),
		conference,
		personEntity("fac_patent", "", GroupResearch,
			yearCol("grantedYear", "Granted Year"),
			plainCol("patentNo", "Patent No"),
			plainCol("patentStatus", "Patent Status"),
		),
		personEntity("fac_researchProject", "", GroupResearch,
			plainCol("projectTitle", "Project Title"),
			plainCol("pi", "Principal Investigator"),
			plainCol("coPi", "Co-Principal Investigator"),
			plainCol("fundingAgency", "Funding Agency"),
			plainCol("duration", "Duration"),
			col("amount", "Amount", KindNumeric),
			plainCol("status", "Status"),
		),
		personEntity("fac_eventAttended", "", GroupResearch,
			plainCol("eventName", "Event Name"),
			plainCol("typeOfEvent", "Type of Event"),
			plainCol("organizer", "Organizer"),
			plainCol("venue", "Venue"),
			dateCol("fromDate", "From Date"),
			dateCol("toDate", "To Date"),
		),
		personEntity("fac_eventOrganized", "", GroupResearch,
			plainCol("eventName", "Event Name"),
			plainCol("typeofevent", "Type of Event"),
			plainCol("organizer", "Organizer"),
			plainCol("venue", "Venue"),
			dateCol("fromDate", "From Date"),
			dateCol("toDate", "To Date"),
		),
		personEntity("fac_consultancy", "", GroupResearch,
			plainCol("projectTitle", "Project Title"),
			plainCol("principalInvestigator", "Principal Investigator"),
			plainCol("coPrincipalInvestigator", "Co-Principal Investigator"),
			dateCol("sanctionedDate", "Sanctioned Date"),
			col("amount", "Amount", KindNumeric),
			plainCol("status", "Status"),
		),
		personal,
		edu,
	}
}

// DefaultRegistry returns a registry over Catalog
func DefaultRegistry() *Registry {
	r, err := NewRegistry(Catalog()...)
	if err != nil {
		panic("report: invalid built-in catalog: " + err.Error())
	}
	return r
}
