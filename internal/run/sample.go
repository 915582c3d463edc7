package run

// SampleListingHTML is canned listing markup for sample mode, bypassing
// the source fetch. It mirrors the live listing's structure: a company
// link immediately followed by the announcement PDF link.
const SampleListingHTML = `
<div>

  <div class="card card-medium">
    <div class="sub margin-bottom-16">Today</div>

      <div class="bordered rounded padding-12-18 announcement-item margin-top-12">
        <div class="flex flex-gap-16">
          <div class="flex flex-column">
            <a href="/company/MAHSCOOTER/" class="font-weight-500 sub-link" target="_blank">
              <span class="ink-900 hover-link">Mah. Scooters</span>
            </a>
            <a href="https://www.bseindia.com/stockinfo/AnnPdfOpen.aspx?Pname=0b1f42b4-9fae-4035-af80-0ebf86322ba5.pdf" target="_blank" rel="noopener noreferrer">
              Intimation Under Regulation 42 Of The SEBI (LODR) Regulations, 2015 - Record Date
              <span class="ink-600 smaller">25m ago</span>
            </a>
          </div>
        </div>
      </div>

      <div class="bordered rounded padding-12-18 announcement-item margin-top-12">
        <div class="flex flex-gap-16">
          <div class="flex flex-column">
            <a href="/company/TCS/consolidated/" class="font-weight-500 sub-link" target="_blank">
              <span class="ink-900 hover-link">TCS</span>
            </a>
            <a href="https://www.bseindia.com/stockinfo/AnnPdfOpen.aspx?Pname=030da518-31d8-4310-9aa8-64d1212a352f.pdf" target="_blank" rel="noopener noreferrer">
              Press Release - The Warehouse Group Selects TCS To Lead Strategic IT Transformation Initiatives
              <span class="ink-600 smaller">48m ago</span>
            </a>
          </div>
        </div>
      </div>

      <div class="bordered rounded padding-12-18 announcement-item margin-top-12">
        <div class="flex flex-gap-16">
          <div class="flex flex-column">
            <a href="/company/LT/consolidated/" class="font-weight-500 sub-link" target="_blank">
              <span class="ink-900 hover-link">Larsen &amp; Toubro</span>
            </a>
            <a href="https://www.bseindia.com/stockinfo/AnnPdfOpen.aspx?Pname=14409621-a12b-41a1-90bc-647e73dbd239.pdf" target="_blank" rel="noopener noreferrer">
              Announcement under Regulation 30 (LODR)-Award_of_Order_Receipt_of_Order
              <span class="ink-600 smaller">1h ago</span>
            </a>
          </div>
        </div>
      </div>

  </div>

</div>
`
