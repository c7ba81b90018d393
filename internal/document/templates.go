package document

const signature = `
Sincerely,
{{.UserName}}
[Your Address]
[Your Phone Number]
[Your Email Address]

Date: {{.Date}}
`

const propertyDisputeTemplate = `FORMAL NOTICE - PROPERTY DISPUTE RESOLUTION

TO: [LANDLORD/PROPERTY OWNER NAME]
FROM: {{.UserName}}
DATE: {{.Date}}
RE: PROPERTY DISPUTE - [PROPERTY ADDRESS]

Dear [LANDLORD/PROPERTY OWNER NAME],

This letter serves as formal notice regarding a property dispute that requires immediate attention and resolution.

BACKGROUND:
Based on the details provided: "{{.Excerpt}}"

SECURITY DEPOSIT:
Any security deposit held for the tenancy must be returned, with an itemized statement of deductions, within the statutory timeframe. Amount claimed: $[AMOUNT].

LEGAL GROUNDS:
Under applicable landlord-tenant laws and property regulations, I am entitled to:
- Fair treatment and proper maintenance of the property
- Return of security deposits within statutory timeframes
- Proper notice for any changes to tenancy terms
- Habitable living conditions as per health and safety codes

DEMAND FOR RESOLUTION:
I hereby formally request that you:
1. Address the issues mentioned above within 30 days
2. Provide written confirmation of corrective actions taken
3. Compensate for any damages or losses incurred

LEGAL CONSEQUENCES:
Failure to respond appropriately may result in:
- Filing a complaint with local housing authorities
- Pursuing legal action for damages
- Reporting violations to relevant regulatory bodies
- Seeking attorney fees and court costs

I prefer to resolve this matter amicably and professionally. Please contact me within 10 business days to discuss a resolution.
` + signature

const wageTheftTemplate = `FORMAL COMPLAINT - WAGE AND HOUR VIOLATIONS

TO: [EMPLOYER NAME]
FROM: {{.UserName}}
DATE: {{.Date}}
RE: UNPAID WAGES AND LABOR LAW VIOLATIONS

Dear [EMPLOYER NAME],

This letter serves as formal notice of wage and hour violations under federal and state labor laws.

VIOLATION DETAILS:
Based on my employment records: "{{.Excerpt}}"

LEGAL REQUIREMENTS:
Under the Fair Labor Standards Act (FLSA) and applicable state labor laws:
- All hours worked must be compensated at agreed rates
- Overtime must be paid at 1.5x regular rate for hours over 40/week
- Final paychecks must be issued within statutory timeframes
- Wage statements must accurately reflect hours and compensation

DEMAND FOR PAYMENT:
I hereby demand:
1. Payment of all unpaid wages: $[AMOUNT]
2. Overtime compensation: $[AMOUNT]
3. Interest and penalties as allowed by law
4. Full accounting of all deductions taken

TIMEFRAME:
You have 30 days from receipt of this letter to remit full payment.

LEGAL ACTION:
Failure to comply will result in:
- Filing complaints with the Department of Labor
- Pursuing civil litigation for unpaid wages
- Seeking liquidated damages and attorney fees
- Reporting violations to state labor authorities

Please contact me immediately to arrange payment.
` + signature

const loanRecoveryTemplate = `FORMAL DEMAND LETTER - LOAN RECOVERY

TO: [BORROWER NAME]
FROM: {{.UserName}}
DATE: {{.Date}}
RE: OUTSTANDING LOAN OBLIGATION

Dear [BORROWER NAME],

This letter constitutes formal demand for immediate payment of the outstanding loan balance.

LOAN DETAILS:
As evidenced by our agreement: "{{.Excerpt}}"

CURRENT STATUS:
- Original Loan Amount: $[AMOUNT]
- Current Balance Due: $[AMOUNT]
- Days Past Due: [NUMBER]
- Last Payment Received: [DATE]

LEGAL DEMAND:
You are hereby formally demanded to pay the full outstanding balance of $[AMOUNT] within thirty (30) days of receipt of this letter.

DOCUMENTATION:
I have maintained complete records including:
- Original loan agreement
- Payment history
- Communications regarding the debt
- Banking records of the loan disbursement

CONSEQUENCES OF NON-PAYMENT:
Failure to remit payment within the specified timeframe will result in:
- Acceleration of the entire debt amount
- Legal action to recover principal, interest, and costs
- Potential impact on your credit rating
- Collection of attorney fees and court costs
- Garnishment of wages or assets if judgment is obtained

RESOLUTION:
I prefer to resolve this matter without litigation. Please contact me immediately to arrange payment or discuss a payment plan.

This is a formal attempt to collect a debt. Any information obtained will be used for that purpose.
` + signature

const harassmentTemplate = `FORMAL COMPLAINT - HARASSMENT AND INTIMIDATION

TO: [RESPONDENT NAME/ORGANIZATION]
FROM: {{.UserName}}
DATE: {{.Date}}
RE: HARASSMENT COMPLAINT AND DEMAND FOR CESSATION

Dear [RESPONDENT NAME],

This letter serves as formal notice that your conduct constitutes harassment and must cease immediately.

HARASSMENT DETAILS:
The following incidents have occurred: "{{.Excerpt}}"

LEGAL STANDARDS:
Your conduct violates:
- Anti-harassment statutes
- Civil rights protections
- Disturbing the peace ordinances
- Potential criminal statutes

EVIDENCE:
I have documented evidence including:
- Dates and times of incidents
- Witness statements
- Photos or recordings where applicable
- Police reports (if filed)

IMMEDIATE DEMANDS:
1. Cease all harassing behavior immediately
2. Maintain a respectful distance
3. Refrain from any contact or communication
4. Respect my right to peaceful enjoyment of my property/workplace

LEGAL CONSEQUENCES:
Continued harassment will result in:
- Filing for a restraining order/protection order
- Criminal complaints to law enforcement
- Civil lawsuit for damages and injunctive relief
- Seeking attorney fees and court costs

This letter serves as formal notice and will be filed with relevant authorities.

I expect your immediate compliance with this demand.
` + signature

const contractDisputeTemplate = `FORMAL NOTICE - CONTRACT DISPUTE

TO: [CONTRACTING PARTY NAME]
FROM: {{.UserName}}
DATE: {{.Date}}
RE: BREACH OF CONTRACT - [CONTRACT DESCRIPTION]

Dear [CONTRACTING PARTY NAME],

This letter serves as formal notice of breach of contract and demand for performance.

CONTRACT DETAILS:
Regarding our agreement: "{{.Excerpt}}"

BREACH ALLEGATIONS:
You have failed to perform the following contractual obligations:
- [SPECIFIC BREACH 1]
- [SPECIFIC BREACH 2]
- [SPECIFIC BREACH 3]

LEGAL GROUNDS:
Under the terms of our contract dated [DATE], you agreed to [OBLIGATIONS].
Your failure to perform constitutes a material breach of contract.

DEMAND FOR PERFORMANCE:
I hereby demand that you:
1. Cure the breach within 30 days
2. Perform all outstanding obligations
3. Compensate for damages incurred due to the breach

DAMAGES:
As a result of your breach, I have suffered:
- Direct damages: $[AMOUNT]
- Consequential damages: $[AMOUNT]
- Additional costs: $[AMOUNT]

REMEDIES:
If you fail to cure this breach, I will pursue all available legal remedies including:
- Termination of the contract
- Lawsuit for damages and specific performance
- Recovery of attorney fees and costs
- Any other relief deemed appropriate by the court

Please contact me immediately to discuss resolution of this matter.
` + signature

const domesticAbuseTemplate = `CONFIDENTIAL LEGAL DOCUMENT
DOMESTIC ABUSE DOCUMENTATION AND SAFETY PLAN

PREPARED FOR: {{.UserName}}
DATE: {{.Date}}
CASE REFERENCE: [CASE NUMBER]

INCIDENT DOCUMENTATION:
Based on the reported information: "{{.Excerpt}}"

IMMEDIATE SAFETY RECOMMENDATIONS:
1. Contact local law enforcement if in immediate danger (911)
2. Reach out to domestic violence hotline: 1-800-799-7233
3. Consider temporary protection order/restraining order
4. Document all incidents with dates, times, and evidence

LEGAL OPTIONS AVAILABLE:
- Emergency Protection Order (EPO)
- Temporary Restraining Order (TRO)
- Permanent Restraining Order
- Criminal charges through prosecutor's office
- Civil lawsuit for damages

EVIDENCE PRESERVATION:
- Photograph any injuries
- Keep medical records
- Save threatening messages/emails
- Maintain incident diary
- Collect witness statements

RESOURCES:
- National Domestic Violence Hotline: 1-800-799-7233
- Local Women's Shelter: [LOCAL NUMBER]
- Legal Aid Society: [LOCAL NUMBER]
- Victim Services: [LOCAL NUMBER]

SAFETY PLANNING:
- Identify safe places to go
- Keep important documents accessible
- Have emergency contact list
- Consider safety of children/pets

CONFIDENTIALITY NOTICE:
This document contains sensitive information and should be kept secure.

For immediate legal assistance, contact a domestic violence attorney or legal aid organization.

Document prepared: {{.Date}}
`

const genericTemplate = `FORMAL LEGAL NOTICE

TO: [RECIPIENT NAME]
FROM: {{.UserName}}
DATE: {{.Date}}
RE: {{.CategoryUpper}} - FORMAL COMPLAINT

Dear [RECIPIENT NAME],

This letter serves as formal notice regarding a legal matter that requires your immediate attention.

MATTER DETAILS:
{{.Transcript}}

LEGAL POSITION:
Based on applicable laws and regulations, I believe my rights have been violated and seek appropriate remedy.

DEMAND:
I hereby formally request that you:
1. Address the issues outlined above
2. Provide appropriate compensation or remedy
3. Take corrective action to prevent future occurrences

TIMEFRAME:
Please respond within 30 days of receipt of this letter.

LEGAL CONSEQUENCES:
Failure to respond appropriately may result in formal legal action to protect my rights and seek appropriate remedies.

I prefer to resolve this matter amicably and look forward to your prompt response.
` + signature
